package controllers

import (
	"net/http"

	"github.com/lunamercado/storefront-gateway/api/responses"
	addresssvc "github.com/lunamercado/storefront-gateway/internal/address"
	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
	"github.com/lunamercado/storefront-gateway/pkg/logger"
)

// AddressList returns the shopper's address book.
func AddressList(svc addresssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		book, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, book)
	}
}
