package id

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns a random v4 UUID as exactly 32 lowercase hex characters
// (no separators/prefixes).
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Valid reports whether s is a lowercase RFC 4122 UUID (versions 1-5) or a
// 32-char lowercase hex id.
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 32:
		for _, r := range s {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				return false
			}
		}
		return true
	case 36:
		u, err := uuid.Parse(s)
		if err != nil || u.String() != s || u.Variant() != uuid.RFC4122 {
			return false
		}
		v := u.Version()
		return v >= 1 && v <= 5
	}
	return false
}
