package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	// inFlightTTL bounds how long a crashed handler can block retries.
	inFlightTTL = 60 * time.Second
	// maxClockSkew is how far Ax-Request-At may drift from server time.
	maxClockSkew = 10 * time.Minute

	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderReplay    = "Ax-Idempotent-Replay"
)

// replayEntry is what Redis holds for one key: a reservation while the
// handler runs, then the response it produced.
type replayEntry struct {
	InFlight    bool      `json:"in_flight"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// capture tees the handler's response so it can be stored.
type capture struct {
	w    http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *capture) Header() http.Header { return r.w.Header() }
func (r *capture) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.w.Write(b)
}
func (r *capture) WriteHeader(code int) { r.code = code; r.w.WriteHeader(code) }

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// IdempotencyMiddleware makes mutating requests safe to retry. A request is
// identified by method, path, caller and Ax-Request-Id; a repeat with the
// same body replays the stored response, a repeat with another body is a 409.
// Mount after Authenticate. Server errors are not stored, so the client may
// retry with the same id.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return errJSON(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validReqID(reqID) {
				return errJSON(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return errJSON(c, http.StatusBadRequest, err.Error())
			}
			if now := nowUTC(); reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
				return errJSON(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}

			claim := ClaimFrom(c)
			if claim.UserID == 0 {
				return errJSON(c, http.StatusUnauthorized, "missing claim")
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return errJSON(c, http.StatusBadRequest, "unreadable body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)

			key := replayKey(req.Method, req.URL.Path, claim.UserID, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			ok, err := store.reserve(ctx, key, replayEntry{
				InFlight:    true,
				BodySHA256:  hash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				slog.WarnContext(ctx, "idempotency: store unavailable", "key", key, "err", err)
				return errJSON(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				return replay(c, store, key, hash)
			}

			rec := &capture{w: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may be gone by now
			bg := context.Background()
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					slog.Warn("idempotency: release", "key", key, "err", err)
				}
				return nil
			}
			err = store.finish(bg, key, replayEntry{
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  hash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}, ttl)
			if err != nil {
				slog.Warn("idempotency: save final", "key", key, "err", err)
			}
			return nil
		}
	}
}

// replay answers a request whose key is already taken.
func replay(c echo.Context, store replayStore, key, hash string) error {
	ctx := c.Request().Context()
	cur, err := store.load(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "idempotency: load entry", "key", key, "err", err)
	}
	if cur.BodySHA256 != "" && cur.BodySHA256 != hash {
		return errJSON(c, http.StatusConflict, HeaderRequestID+" reused with different body")
	}
	if cur.InFlight || cur.Code == 0 {
		return errJSON(c, http.StatusConflict, "request is already in progress")
	}
	c.Response().Header().Set(HeaderReplay, "true")
	if len(cur.Body) == 0 {
		return c.NoContent(cur.Code)
	}
	return c.Blob(cur.Code, echo.MIMEApplicationJSONCharsetUTF8, cur.Body)
}
