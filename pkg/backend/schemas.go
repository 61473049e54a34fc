package backend

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/lunamercado/storefront-gateway/pkg/enums"
)

// SessionEntry is the single cart reference a checkout session carries when
// the shopper bought straight from a product page.
type SessionEntry struct {
	ProductID   string `json:"product_id" validate:"required"`
	SelectedSKU string `json:"selected_sku" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=1"`
}

// SessionPayload is the checkout session body. The order service returns
// either one embedded entry or a list of product identifiers pointing into
// the shopper's cart; exactly one of the two fields is set.
type SessionPayload struct {
	Entry      *SessionEntry
	ProductIDs []string
}

// Multi reports whether the session references cart entries by product id.
func (p SessionPayload) Multi() bool {
	return p.Entry == nil
}

func (p *SessionPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		p.Entry = nil
		return json.Unmarshal(trimmed, &p.ProductIDs)
	}
	entry := &SessionEntry{}
	if err := json.Unmarshal(trimmed, entry); err != nil {
		return err
	}
	p.Entry = entry
	p.ProductIDs = nil
	return nil
}

func (p SessionPayload) MarshalJSON() ([]byte, error) {
	if p.Entry != nil {
		return json.Marshal(p.Entry)
	}
	return json.Marshal(p.ProductIDs)
}

// CartEntry is one line of the shopper's cart as held by the order service.
type CartEntry struct {
	ProductID   string `json:"product_id"`
	SelectedSKU string `json:"selected_sku" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=1"`
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	SKU   string          `json:"sku" validate:"required"`
	Stock int             `json:"stock"`
	Price decimal.Decimal `json:"price"`
}

// Product is the catalog view the product service exposes to checkout.
type Product struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name" validate:"required"`
	Images   []string  `json:"images"`
	Variants []Variant `json:"variants" validate:"min=1,dive"`
}

// VariantBySKU returns the variant with the given SKU, if present.
func (p Product) VariantBySKU(sku string) (Variant, bool) {
	for _, variant := range p.Variants {
		if variant.SKU == sku {
			return variant, true
		}
	}
	return Variant{}, false
}

// Discount is a product-scoped discount as the product service defines it.
type Discount struct {
	ID              string             `json:"_id" validate:"required"`
	Code            string             `json:"code"`
	Type            enums.DiscountType `json:"type" validate:"required"`
	Value           decimal.Decimal    `json:"value"`
	MinimumPurchase decimal.Decimal    `json:"minimum_purchase"`
	MaxUses         int                `json:"max_uses"`
	CurrentUses     int                `json:"current_uses"`
}

// Exhausted reports whether the discount's usage cap is reached.
func (d Discount) Exhausted() bool {
	return d.CurrentUses >= d.MaxUses
}

// Address is one entry of the shopper's address book.
type Address struct {
	ID        string `json:"_id"`
	Country   string `json:"country"`
	Address   string `json:"address"`
	IsDefault bool   `json:"isDefault"`
}

// DiscountUsage is the analytics record written when a discount is applied.
type DiscountUsage struct {
	DiscountID   string          `json:"discount_id"`
	ProductID    string          `json:"product_id"`
	DiscountCost decimal.Decimal `json:"discount_cost"`
}

// OrderLine is one submitted order line.
type OrderLine struct {
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	SKU             string          `json:"sku"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	ShippingAddress string          `json:"shipping_address"`
	AppliedDiscount string          `json:"applied_discount,omitempty"`
}

// OrderRequest is the order submission body.
type OrderRequest struct {
	Lines         []OrderLine         `json:"lines"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// PaymentSession is what the order service returns when a hosted payment
// flow has to collect the money before the order exists.
type PaymentSession struct {
	SessionID string `json:"session_id" validate:"required"`
}
