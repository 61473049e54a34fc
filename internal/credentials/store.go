package credentials

import (
	"context"
	"strings"
)

// Pair is one storefront session's token pair as issued by the user service.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoggedIn reports whether the pair is usable at all. Absence of either token
// is treated as logged out.
func (p Pair) LoggedIn() bool {
	return strings.TrimSpace(p.AccessToken) != "" && strings.TrimSpace(p.RefreshToken) != ""
}

// Empty reports whether no credentials are held.
func (p Pair) Empty() bool {
	return strings.TrimSpace(p.AccessToken) == "" && strings.TrimSpace(p.RefreshToken) == ""
}

// Store is the single owner of persisted credentials. The backend client
// receives it by injection instead of reaching into ambient storage.
type Store interface {
	// Get returns the pair for the session key, or the zero Pair when none
	// is stored.
	Get(ctx context.Context, sessionKey string) (Pair, error)
	// Set persists the pair for the session key.
	Set(ctx context.Context, sessionKey string, pair Pair) error
	// Clear removes any stored pair for the session key.
	Clear(ctx context.Context, sessionKey string) error
}

type contextKey string

const ctxSessionKey contextKey = "storefront_session"

// WithSessionKey injects the storefront session key into the context.
func WithSessionKey(ctx context.Context, sessionKey string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionKey, sessionKey)
}

// SessionKeyFromContext returns the storefront session key, if any.
func SessionKeyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionKey).(string); ok {
		return v
	}
	return ""
}
