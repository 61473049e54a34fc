package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lunamercado/storefront-gateway/pkg/backend"
	"github.com/lunamercado/storefront-gateway/pkg/enums"
)

// LineItem is one product's editable representation within the checkout
// view, built by merging the session entry, the cart line, and the catalog
// view of the product.
type LineItem struct {
	ProductID   string             `json:"product_id"`
	Name        string             `json:"name"`
	Images      []string           `json:"images"`
	Quantity    int                `json:"quantity"`
	SelectedSKU string             `json:"selected_sku"`
	Price       decimal.Decimal    `json:"price"`
	Variants    []backend.Variant  `json:"variants"`
	Discounts   []backend.Discount `json:"discounts,omitempty"`

	// AppliedDiscount holds the full discount when one is applied; the id
	// mirror is what order submission carries.
	AppliedDiscount   *backend.Discount `json:"applied_discount_detail,omitempty"`
	AppliedDiscountID string            `json:"applied_discount,omitempty"`
}

// Subtotal is the line's contribution to the order total.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// View is the materialized checkout state. It is handed to the caller on
// load and passed back unchanged on each mutating call; the service treats
// it as the single source of truth for totals.
type View struct {
	SessionID       string              `json:"session_id"`
	Items           []LineItem          `json:"items"`
	Addresses       []backend.Address   `json:"addresses"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`

	// ShippingFee is the flat per-order fee before discounts;
	// ShippingTotal is what remains after shipping discounts.
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	Total         decimal.Decimal `json:"total"`
}

// Item returns a pointer to the line item for the product, or nil.
func (v *View) Item(productID string) *LineItem {
	for i := range v.Items {
		if v.Items[i].ProductID == productID {
			return &v.Items[i]
		}
	}
	return nil
}

// HasShippingAddress reports whether a usable shipping address is selected.
func (v *View) HasShippingAddress() bool {
	return strings.TrimSpace(v.ShippingAddress) != ""
}

// recompute rebuilds the monetary totals from scratch over all line items.
// Shipping discounts do not stack; the largest single reduction wins and is
// capped at the full fee.
func (v *View) recompute() {
	subtotal := decimal.Zero
	reduction := decimal.Zero
	hundred := decimal.NewFromInt(100)

	for i := range v.Items {
		subtotal = subtotal.Add(v.Items[i].Subtotal())
		applied := v.Items[i].AppliedDiscount
		if applied == nil || !applied.Type.IsShipping() {
			continue
		}
		candidate := v.ShippingFee.Mul(applied.Value).Div(hundred)
		if candidate.GreaterThan(reduction) {
			reduction = candidate
		}
	}

	if reduction.GreaterThan(v.ShippingFee) {
		reduction = v.ShippingFee
	}
	v.ShippingTotal = v.ShippingFee.Sub(reduction)
	v.Total = subtotal.Add(v.ShippingTotal)
}
