package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The gateway never holds the signing secret for backend-issued tokens, so
// claims are read without signature verification. The backends stay the
// authority; a forged exp only costs us one rejected call.

// ExpiresWithin reports whether the access token's exp claim falls within skew
// from now. Tokens without a readable exp claim report false.
func ExpiresWithin(tokenString string, now time.Time, skew time.Duration) bool {
	expiry, ok := expiresAt(tokenString)
	if !ok {
		return false
	}
	return !expiry.After(now.Add(skew))
}

func expiresAt(tokenString string) (time.Time, bool) {
	trimmed := strings.TrimSpace(tokenString)
	if trimmed == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(trimmed, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
