package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lunamercado/storefront-gateway/internal/credentials"
	"github.com/lunamercado/storefront-gateway/pkg/enums"
	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
)

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parsing decimal %q: %v", value, err)
	}
	return d
}

func loggedInClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	store := credentials.NewMemoryStore()
	_ = store.Set(context.Background(), testSessionKey, credentials.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"})
	return testClient(t, serverURL, store)
}

func TestGetSessionSingleEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/get/chk-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeData(w, map[string]any{"product_id": "p-1", "selected_sku": "sku-a", "quantity": 2})
	}))
	defer server.Close()

	payload, err := loggedInClient(t, server.URL).GetSession(sessionCtx(), "chk-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if payload.Multi() {
		t.Fatal("expected single entry payload")
	}
	if payload.Entry.ProductID != "p-1" || payload.Entry.Quantity != 2 {
		t.Errorf("entry = %+v", payload.Entry)
	}
}

func TestGetSessionProductIDList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []string{"p-1", "p-2"})
	}))
	defer server.Close()

	payload, err := loggedInClient(t, server.URL).GetSession(sessionCtx(), "chk-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !payload.Multi() {
		t.Fatal("expected multi payload")
	}
	if len(payload.ProductIDs) != 2 || payload.ProductIDs[1] != "p-2" {
		t.Errorf("product ids = %v", payload.ProductIDs)
	}
}

func TestGetSessionInvalidEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"product_id": "p-1", "selected_sku": "", "quantity": 0})
	}))
	defer server.Close()

	_, err := loggedInClient(t, server.URL).GetSession(sessionCtx(), "chk-1")
	if !pkgerrors.HasCode(err, pkgerrors.CodeDecoding) {
		t.Fatalf("expected decoding error, got %v", err)
	}
}

func TestGetProductFillsID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product/by-product/p-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeData(w, map[string]any{
			"name":     "Keyboard",
			"images":   []string{"a.png"},
			"variants": []map[string]any{{"sku": "sku-a", "stock": 3, "price": "25.50"}},
		})
	}))
	defer server.Close()

	product, err := loggedInClient(t, server.URL).GetProduct(sessionCtx(), "p-1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if product.ID != "p-1" {
		t.Errorf("product id = %q", product.ID)
	}
	variant, ok := product.VariantBySKU("sku-a")
	if !ok || !variant.Price.Equal(decimalFromString(t, "25.50")) {
		t.Errorf("variant = %+v ok=%v", variant, ok)
	}
}

func TestGetProductWithoutVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"name": "Keyboard", "variants": []any{}})
	}))
	defer server.Close()

	_, err := loggedInClient(t, server.URL).GetProduct(sessionCtx(), "p-1")
	if !pkgerrors.HasCode(err, pkgerrors.CodeDecoding) {
		t.Fatalf("expected decoding error, got %v", err)
	}
}

func TestGetProductDiscounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product/by-product-with-discount/p-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeData(w, []map[string]any{
			{"_id": "d-1", "code": "SAVE10", "type": "percentage", "value": "10", "minimum_purchase": "0", "max_uses": 5, "current_uses": 5},
			{"_id": "d-2", "code": "FREESHIP", "type": "free-shipping", "value": "100", "max_uses": 100, "current_uses": 1},
		})
	}))
	defer server.Close()

	discounts, err := loggedInClient(t, server.URL).GetProductDiscounts(sessionCtx(), "p-1")
	if err != nil {
		t.Fatalf("GetProductDiscounts: %v", err)
	}
	if len(discounts) != 2 {
		t.Fatalf("discounts = %+v", discounts)
	}
	if !discounts[0].Exhausted() {
		t.Error("d-1 should be exhausted")
	}
	if discounts[1].Exhausted() {
		t.Error("d-2 has uses remaining")
	}
	if !discounts[1].Type.IsShipping() {
		t.Error("d-2 should be a shipping discount")
	}
}

func TestCreatePaymentSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/session" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		writeData(w, map[string]string{"session_id": "pay-1"})
	}))
	defer server.Close()

	sessionID, err := loggedInClient(t, server.URL).CreatePaymentSession(sessionCtx(), OrderRequest{
		PaymentMethod: enums.PaymentMethodGateway,
	})
	if err != nil {
		t.Fatalf("CreatePaymentSession: %v", err)
	}
	if sessionID != "pay-1" {
		t.Errorf("session id = %q", sessionID)
	}
}

func TestGetCartEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart/by-product/p-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeData(w, map[string]any{"selected_sku": "sku-a", "quantity": 3})
	}))
	defer server.Close()

	entry, err := loggedInClient(t, server.URL).GetCartEntry(sessionCtx(), "p-1")
	if err != nil {
		t.Fatalf("GetCartEntry: %v", err)
	}
	if entry.ProductID != "p-1" || entry.Quantity != 3 {
		t.Errorf("entry = %+v", entry)
	}
}

func TestGetAddresses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/user-address" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeData(w, []map[string]any{
			{"_id": "a-1", "country": "MX", "address": "Calle 1", "isDefault": false},
			{"_id": "a-2", "country": "MX", "address": "Calle 2", "isDefault": true},
		})
	}))
	defer server.Close()

	addresses, err := loggedInClient(t, server.URL).GetAddresses(sessionCtx())
	if err != nil {
		t.Fatalf("GetAddresses: %v", err)
	}
	if len(addresses) != 2 || !addresses[1].IsDefault {
		t.Errorf("addresses = %+v", addresses)
	}
}
