package middleware

import (
	"net/http"
	"strings"

	"github.com/lunamercado/storefront-gateway/api/responses"
	"github.com/lunamercado/storefront-gateway/internal/credentials"
	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
	"github.com/lunamercado/storefront-gateway/pkg/logger"
)

const sessionHeader = "X-Storefront-Session"

// StorefrontSession binds the caller's storefront session key into the
// request context. Every credentialed backend call downstream is keyed by
// it, so requests without one are rejected up front.
func StorefrontSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionKey := strings.TrimSpace(r.Header.Get(sessionHeader))
			if sessionKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "storefront session header required"))
				return
			}

			ctx := credentials.WithSessionKey(r.Context(), sessionKey)
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, sessionKey)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
