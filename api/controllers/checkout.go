package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lunamercado/storefront-gateway/api/responses"
	"github.com/lunamercado/storefront-gateway/api/validators"
	checkoutsvc "github.com/lunamercado/storefront-gateway/internal/checkout"
	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
	"github.com/lunamercado/storefront-gateway/pkg/logger"
)

// CheckoutLoad materializes the checkout view for a session.
func CheckoutLoad(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := chi.URLParam(r, "sessionID")
		view, err := svc.Load(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type discountsRequest struct {
	View      *checkoutsvc.View `json:"view" validate:"required"`
	ProductID string            `json:"product_id" validate:"required"`
}

// CheckoutDiscounts fetches the discounts available for one line item.
func CheckoutDiscounts(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload discountsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Discounts(r.Context(), payload.View, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type applyDiscountRequest struct {
	View       *checkoutsvc.View `json:"view" validate:"required"`
	ProductID  string            `json:"product_id" validate:"required"`
	DiscountID string            `json:"discount_id" validate:"required"`
}

// CheckoutApplyDiscount applies one discount to one line item and returns
// the recomputed view.
func CheckoutApplyDiscount(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload applyDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ApplyDiscount(r.Context(), payload.View, payload.ProductID, payload.DiscountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type submitRequest struct {
	View *checkoutsvc.View `json:"view" validate:"required"`
}

// CheckoutSubmit places the order built from the view.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload submitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), payload.View)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
