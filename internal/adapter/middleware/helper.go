package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"oneshelf-backend/pkg/id"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// replayKey scopes a request id to one caller and one route.
func replayKey(method, path string, userID uint64, requestID string) string {
	return strings.Join([]string{
		"oneshelf:replay",
		strings.ToLower(method),
		path,
		strconv.FormatUint(userID, 10),
		requestID,
	}, ":")
}

func validReqID(reqID string) bool { return id.Valid(reqID) }

// parseRequestAt reads Ax-Request-At as epoch seconds, epoch milliseconds or
// RFC 3339 with an explicit zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// replayStore keeps one replayEntry per key in Redis.
type replayStore struct{ rdb *redis.Client }

// reserve claims key for an in-flight request. It reports false when the
// key is already taken.
func (s replayStore) reserve(ctx context.Context, key string, e replayEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, inFlightTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

// finish replaces the reservation with the recorded response.
func (s replayStore) finish(ctx context.Context, key string, e replayEntry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

// release drops the reservation so the client may retry.
func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
