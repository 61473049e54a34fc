package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
)

var validate = validator.New()

func validated(service Service, payload any) error {
	if err := validate.Struct(payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecoding, err, fmt.Sprintf("%s service payload failed validation", service))
	}
	return nil
}

// GetSession loads the checkout session from the session service.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionPayload, error) {
	var payload SessionPayload
	path := "/session/get/" + url.PathEscape(sessionID)
	if err := c.Do(ctx, http.MethodGet, path, ServiceOther, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Entry != nil {
		if err := validated(ServiceOther, payload.Entry); err != nil {
			return nil, err
		}
	}
	return &payload, nil
}

// CleanSession discards the checkout session after a completed order.
func (c *Client) CleanSession(ctx context.Context, sessionID string) error {
	path := "/session/clean/" + url.PathEscape(sessionID)
	return c.Do(ctx, http.MethodGet, path, ServiceOther, nil, nil)
}

// CreatePaymentSession opens a hosted payment session for the order and
// returns its identifier.
func (c *Client) CreatePaymentSession(ctx context.Context, order OrderRequest) (string, error) {
	var session PaymentSession
	if err := c.Do(ctx, http.MethodPost, "/session", ServiceOther, order, &session); err != nil {
		return "", err
	}
	if err := validated(ServiceOther, session); err != nil {
		return "", err
	}
	return session.SessionID, nil
}

// GetCartEntry fetches the shopper's cart line for one product.
func (c *Client) GetCartEntry(ctx context.Context, productID string) (*CartEntry, error) {
	var entry CartEntry
	path := "/cart/by-product/" + url.PathEscape(productID)
	if err := c.Do(ctx, http.MethodGet, path, ServiceOrder, nil, &entry); err != nil {
		return nil, err
	}
	if err := validated(ServiceOrder, entry); err != nil {
		return nil, err
	}
	if entry.ProductID == "" {
		entry.ProductID = productID
	}
	return &entry, nil
}

// GetProduct fetches the catalog view of one product.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var product Product
	path := "/product/by-product/" + url.PathEscape(productID)
	if err := c.Do(ctx, http.MethodGet, path, ServiceProduct, nil, &product); err != nil {
		return nil, err
	}
	if err := validated(ServiceProduct, product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		product.ID = productID
	}
	return &product, nil
}

// GetProductDiscounts fetches the discounts defined for one product.
func (c *Client) GetProductDiscounts(ctx context.Context, productID string) ([]Discount, error) {
	var discounts []Discount
	path := "/product/by-product-with-discount/" + url.PathEscape(productID)
	if err := c.Do(ctx, http.MethodGet, path, ServiceProduct, nil, &discounts); err != nil {
		return nil, err
	}
	for _, discount := range discounts {
		if err := validated(ServiceProduct, discount); err != nil {
			return nil, err
		}
	}
	return discounts, nil
}

// RecordDiscountUsage writes the usage record to the product service.
func (c *Client) RecordDiscountUsage(ctx context.Context, usage DiscountUsage) error {
	return c.Do(ctx, http.MethodPost, "/discount_usage", ServiceProduct, usage, nil)
}

// SubmitOrder places the order with the order service.
func (c *Client) SubmitOrder(ctx context.Context, order OrderRequest) error {
	return c.Do(ctx, http.MethodPost, "/order", ServiceOrder, order, nil)
}

// GetAddresses fetches the shopper's address book from the user service.
func (c *Client) GetAddresses(ctx context.Context) ([]Address, error) {
	var addresses []Address
	if err := c.Do(ctx, http.MethodGet, "/user/user-address", ServiceUser, nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}
