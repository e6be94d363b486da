package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"oneshelf-backend/internal/domain/auth"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const claimContextKey = "oneshelf.claim"

// tokenClaims is the JWT payload issued by the account service.
type tokenClaims struct {
	UserID    uint64    `json:"id"`
	Username  string    `json:"username"`
	Role      auth.Role `json:"role"`
	LibraryID *uint64   `json:"libraryId,omitempty"`
	jwt.RegisteredClaims
}

var errBadToken = errors.New("invalid token")

// IssueToken signs c with HS256. A ttl <= 0 issues a token without expiry.
func IssueToken(secret []byte, c auth.Claim, ttl time.Duration) (string, error) {
	tc := tokenClaims{
		UserID:    c.UserID,
		Username:  c.Username,
		Role:      c.Role,
		LibraryID: c.LibraryID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  fmt.Sprint(c.UserID),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl > 0 {
		tc.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(secret)
}

// ParseToken verifies raw and returns the claim it carries.
func ParseToken(secret []byte, raw string) (auth.Claim, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(raw, &tc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return auth.Claim{}, fmt.Errorf("%w: %v", errBadToken, err)
	}
	if tc.UserID == 0 || !tc.Role.Valid() {
		return auth.Claim{}, fmt.Errorf("%w: missing id or unknown role", errBadToken)
	}
	return auth.Claim{
		UserID:    tc.UserID,
		Username:  tc.Username,
		Role:      tc.Role,
		LibraryID: tc.LibraryID,
	}, nil
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header and
// stores the verified claim on the context.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			claim, err := ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			SetClaim(c, claim)
			return next(c)
		}
	}
}

// SetClaim attaches claim to the request context.
func SetClaim(c echo.Context, claim auth.Claim) { c.Set(claimContextKey, claim) }

// ClaimFrom returns the claim Authenticate stored, or the zero claim.
func ClaimFrom(c echo.Context) auth.Claim {
	claim, _ := c.Get(claimContextKey).(auth.Claim)
	return claim
}

// RequireRoles rejects callers whose role is not in roles. Mount it after
// Authenticate.
func RequireRoles(roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim := ClaimFrom(c)
			if claim.UserID == 0 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing claim"})
			}
			if !claim.Holds(roles...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "role not allowed"})
			}
			return next(c)
		}
	}
}
