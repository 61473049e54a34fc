package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	checkoutsvc "github.com/lunamercado/storefront-gateway/internal/checkout"
	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
)

type stubCheckoutService struct {
	load          func(ctx context.Context, sessionID string) (*checkoutsvc.View, error)
	discounts     func(ctx context.Context, view *checkoutsvc.View, productID string) (*checkoutsvc.View, error)
	applyDiscount func(ctx context.Context, view *checkoutsvc.View, productID, discountID string) (*checkoutsvc.View, error)
	submit        func(ctx context.Context, view *checkoutsvc.View) (*checkoutsvc.SubmitResult, error)
}

func (s stubCheckoutService) Load(ctx context.Context, sessionID string) (*checkoutsvc.View, error) {
	return s.load(ctx, sessionID)
}

func (s stubCheckoutService) Discounts(ctx context.Context, view *checkoutsvc.View, productID string) (*checkoutsvc.View, error) {
	return s.discounts(ctx, view, productID)
}

func (s stubCheckoutService) ApplyDiscount(ctx context.Context, view *checkoutsvc.View, productID, discountID string) (*checkoutsvc.View, error) {
	return s.applyDiscount(ctx, view, productID, discountID)
}

func (s stubCheckoutService) Submit(ctx context.Context, view *checkoutsvc.View) (*checkoutsvc.SubmitResult, error) {
	return s.submit(ctx, view)
}

func sampleView() *checkoutsvc.View {
	return &checkoutsvc.View{
		SessionID:       "chk-1",
		ShippingAddress: "Calle 1",
		ShippingFee:     decimal.NewFromInt(10),
		ShippingTotal:   decimal.NewFromInt(10),
		Total:           decimal.NewFromInt(30),
	}
}

func TestCheckoutLoadSuccess(t *testing.T) {
	handler := CheckoutLoad(stubCheckoutService{
		load: func(ctx context.Context, sessionID string) (*checkoutsvc.View, error) {
			if sessionID != "chk-1" {
				t.Errorf("session id = %q", sessionID)
			}
			return sampleView(), nil
		},
	}, nil)

	router := chi.NewRouter()
	router.Get("/api/v1/checkout/{sessionID}", handler)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/chk-1", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data checkoutsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SessionID != "chk-1" || !envelope.Data.Total.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected view %+v", envelope.Data)
	}
}

func TestCheckoutLoadSessionExpired(t *testing.T) {
	handler := CheckoutLoad(stubCheckoutService{
		load: func(ctx context.Context, sessionID string) (*checkoutsvc.View, error) {
			return nil, pkgerrors.New(pkgerrors.CodeSessionExpired, "session expired")
		},
	}, nil)

	router := chi.NewRouter()
	router.Get("/api/v1/checkout/{sessionID}", handler)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/chk-1", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeSessionExpired) {
		t.Fatalf("error code = %s", envelope.Error.Code)
	}
}

func TestCheckoutApplyDiscountValidatesBody(t *testing.T) {
	handler := CheckoutApplyDiscount(stubCheckoutService{
		applyDiscount: func(ctx context.Context, view *checkoutsvc.View, productID, discountID string) (*checkoutsvc.View, error) {
			t.Error("service must not be called for an invalid body")
			return nil, nil
		},
	}, nil)

	body := bytes.NewBufferString(`{"product_id": "p1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/discounts/apply", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutApplyDiscountSuccess(t *testing.T) {
	handler := CheckoutApplyDiscount(stubCheckoutService{
		applyDiscount: func(ctx context.Context, view *checkoutsvc.View, productID, discountID string) (*checkoutsvc.View, error) {
			if productID != "p1" || discountID != "d-1" {
				t.Errorf("product=%q discount=%q", productID, discountID)
			}
			updated := *view
			updated.Total = decimal.NewFromInt(26)
			return &updated, nil
		},
	}, nil)

	payload, _ := json.Marshal(map[string]any{
		"view":        sampleView(),
		"product_id":  "p1",
		"discount_id": "d-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/discounts/apply", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data checkoutsvc.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Total.Equal(decimal.NewFromInt(26)) {
		t.Fatalf("total = %s", envelope.Data.Total)
	}
}

func TestCheckoutSubmitSuccess(t *testing.T) {
	handler := CheckoutSubmit(stubCheckoutService{
		submit: func(ctx context.Context, view *checkoutsvc.View) (*checkoutsvc.SubmitResult, error) {
			return &checkoutsvc.SubmitResult{Status: checkoutsvc.SubmitStatusPaymentRequired, PaymentSessionID: "pay-1"}, nil
		},
	}, nil)

	payload, _ := json.Marshal(map[string]any{"view": sampleView()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/submit", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data checkoutsvc.SubmitResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentSessionID != "pay-1" {
		t.Fatalf("result = %+v", envelope.Data)
	}
}
