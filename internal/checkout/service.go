package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lunamercado/storefront-gateway/pkg/backend"
	"github.com/lunamercado/storefront-gateway/pkg/enums"
	pkgerrors "github.com/lunamercado/storefront-gateway/pkg/errors"
	"github.com/lunamercado/storefront-gateway/pkg/logger"
)

type sessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*backend.SessionPayload, error)
	CleanSession(ctx context.Context, sessionID string) error
	CreatePaymentSession(ctx context.Context, order backend.OrderRequest) (string, error)
}

type cartReader interface {
	GetCartEntry(ctx context.Context, productID string) (*backend.CartEntry, error)
}

type catalogReader interface {
	GetProduct(ctx context.Context, productID string) (*backend.Product, error)
	GetProductDiscounts(ctx context.Context, productID string) ([]backend.Discount, error)
	RecordDiscountUsage(ctx context.Context, usage backend.DiscountUsage) error
}

type addressReader interface {
	GetAddresses(ctx context.Context) ([]backend.Address, error)
}

type orderPlacer interface {
	SubmitOrder(ctx context.Context, order backend.OrderRequest) error
}

// Service materializes and edits the checkout view and submits the order.
type Service interface {
	Load(ctx context.Context, sessionID string) (*View, error)
	Discounts(ctx context.Context, view *View, productID string) (*View, error)
	ApplyDiscount(ctx context.Context, view *View, productID, discountID string) (*View, error)
	Submit(ctx context.Context, view *View) (*SubmitResult, error)
}

// SubmitResult tells the caller how the submission ended.
type SubmitResult struct {
	// Status is "completed" for settled orders, "payment_required" when the
	// shopper still has to pay through a hosted session.
	Status string `json:"status"`
	// PaymentSessionID keys the payment-selection view when payment is
	// still pending.
	PaymentSessionID string `json:"payment_session_id,omitempty"`
}

const (
	SubmitStatusCompleted       = "completed"
	SubmitStatusPaymentRequired = "payment_required"
)

type service struct {
	sessions    sessionReader
	carts       cartReader
	catalog     catalogReader
	addresses   addressReader
	orders      orderPlacer
	logger      *logger.Logger
	shippingFee decimal.Decimal
}

// NewService builds the checkout service on top of the backend client.
func NewService(client *backend.Client, logg *logger.Logger, shippingFee decimal.Decimal) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("backend client required")
	}
	return newService(client, client, client, client, client, logg, shippingFee)
}

func newService(
	sessions sessionReader,
	carts cartReader,
	catalog catalogReader,
	addresses addressReader,
	orders orderPlacer,
	logg *logger.Logger,
	shippingFee decimal.Decimal,
) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session reader required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address reader required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order placer required")
	}
	if shippingFee.IsNegative() {
		return nil, fmt.Errorf("shipping fee cannot be negative")
	}
	return &service{
		sessions:    sessions,
		carts:       carts,
		catalog:     catalog,
		addresses:   addresses,
		orders:      orders,
		logger:      logg,
		shippingFee: shippingFee,
	}, nil
}

// Load builds the checkout view from the session. Any fetch failure aborts
// the whole load; checkout cannot proceed with partial data.
func (s *service) Load(ctx context.Context, sessionID string) (*View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	var (
		payload   *backend.SessionPayload
		addresses []backend.Address
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		payload, err = s.sessions.GetSession(groupCtx, sessionID)
		return err
	})
	group.Go(func() error {
		var err error
		addresses, err = s.addresses.GetAddresses(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var items []LineItem
	if payload.Multi() {
		built, err := s.loadCartItems(ctx, payload.ProductIDs)
		if err != nil {
			return nil, err
		}
		items = built
	} else {
		item, err := s.loadSingleItem(ctx, payload.Entry)
		if err != nil {
			return nil, err
		}
		items = []LineItem{*item}
	}

	view := &View{
		SessionID:       sessionID,
		Items:           items,
		Addresses:       addresses,
		ShippingAddress: defaultShippingAddress(addresses),
		PaymentMethod:   enums.PaymentMethodPrepaid,
		ShippingFee:     s.shippingFee,
	}
	view.recompute()
	return view, nil
}

// loadCartItems resolves each product id through the cart and product
// services. The two fetches per item run concurrently, as do the items with
// each other; every result lands in its own slot so completion order does
// not matter.
func (s *service) loadCartItems(ctx context.Context, productIDs []string) ([]LineItem, error) {
	items := make([]LineItem, len(productIDs))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, productID := range productIDs {
		group.Go(func() error {
			var (
				entry   *backend.CartEntry
				product *backend.Product
			)
			pair, pairCtx := errgroup.WithContext(groupCtx)
			pair.Go(func() error {
				var err error
				entry, err = s.carts.GetCartEntry(pairCtx, productID)
				return err
			})
			pair.Go(func() error {
				var err error
				product, err = s.catalog.GetProduct(pairCtx, productID)
				return err
			})
			if err := pair.Wait(); err != nil {
				return err
			}
			items[i] = buildLineItem(productID, entry.SelectedSKU, entry.Quantity, product)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *service) loadSingleItem(ctx context.Context, entry *backend.SessionEntry) (*LineItem, error) {
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDecoding, "session payload carries no entry")
	}
	product, err := s.catalog.GetProduct(ctx, entry.ProductID)
	if err != nil {
		return nil, err
	}
	item := buildLineItem(entry.ProductID, entry.SelectedSKU, entry.Quantity, product)
	return &item, nil
}

// buildLineItem resolves the price from the variant matching the selected
// SKU; a missing variant prices at zero rather than failing the load.
func buildLineItem(productID, selectedSKU string, quantity int, product *backend.Product) LineItem {
	price := decimal.Zero
	if variant, ok := product.VariantBySKU(selectedSKU); ok {
		price = variant.Price
	}
	return LineItem{
		ProductID:   productID,
		Name:        product.Name,
		Images:      product.Images,
		Quantity:    quantity,
		SelectedSKU: selectedSKU,
		Price:       price,
		Variants:    product.Variants,
	}
}

func defaultShippingAddress(addresses []backend.Address) string {
	for _, address := range addresses {
		if address.IsDefault {
			return address.Address
		}
	}
	if len(addresses) > 0 {
		return addresses[0].Address
	}
	return ""
}

// Discounts populates one line item's available discounts.
func (s *service) Discounts(ctx context.Context, view *View, productID string) (*View, error) {
	item := view.Item(productID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is not part of this checkout", productID))
	}
	discounts, err := s.catalog.GetProductDiscounts(ctx, productID)
	if err != nil {
		return nil, err
	}
	item.Discounts = discounts
	return view, nil
}

// ApplyDiscount applies one discount to one line item. Eligibility failures
// and usage-recording failures leave the view untouched; the mutation and
// total recomputation happen only after the usage record is accepted.
func (s *service) ApplyDiscount(ctx context.Context, view *View, productID, discountID string) (*View, error) {
	item := view.Item(productID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is not part of this checkout", productID))
	}
	if item.AppliedDiscount != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a discount is already applied to this item")
	}

	discount, err := s.resolveDiscount(ctx, item, discountID)
	if err != nil {
		return nil, err
	}
	if item.Price.LessThan(discount.MinimumPurchase) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item price is below the discount minimum of %s", discount.MinimumPurchase))
	}
	if discount.Exhausted() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount usage limit reached")
	}

	hundred := decimal.NewFromInt(100)
	newPrice := item.Price
	var cost decimal.Decimal
	if discount.Type.IsShipping() {
		cost = s.shippingFee.Mul(discount.Value).Div(hundred)
		if cost.GreaterThan(s.shippingFee) {
			cost = s.shippingFee
		}
	} else {
		newPrice = item.Price.Mul(decimal.NewFromInt(1).Sub(discount.Value.Div(hundred)))
		cost = item.Price.Sub(newPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
	}

	// The usage record is the commit point: if it cannot be written the
	// discount is not applied.
	usage := backend.DiscountUsage{
		DiscountID:   discount.ID,
		ProductID:    productID,
		DiscountCost: cost,
	}
	if err := s.catalog.RecordDiscountUsage(ctx, usage); err != nil {
		return nil, err
	}

	applied := discount
	applied.CurrentUses++
	item.Price = newPrice
	item.AppliedDiscount = &applied
	item.AppliedDiscountID = applied.ID
	view.recompute()
	return view, nil
}

// resolveDiscount finds the discount on the item's already-fetched list,
// falling back to a fresh fetch when the list was never requested.
func (s *service) resolveDiscount(ctx context.Context, item *LineItem, discountID string) (backend.Discount, error) {
	if len(item.Discounts) == 0 {
		discounts, err := s.catalog.GetProductDiscounts(ctx, item.ProductID)
		if err != nil {
			return backend.Discount{}, err
		}
		item.Discounts = discounts
	}
	for _, discount := range item.Discounts {
		if discount.ID == discountID {
			return discount, nil
		}
	}
	return backend.Discount{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("discount %s is not available for this product", discountID))
}

// Submit validates the view, places the order, and either completes the
// checkout or opens a payment session depending on the payment method.
func (s *service) Submit(ctx context.Context, view *View) (*SubmitResult, error) {
	if !view.HasShippingAddress() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if len(view.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout has no items")
	}
	if !view.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", view.PaymentMethod))
	}

	view.recompute()
	order := backend.OrderRequest{
		Lines:         make([]backend.OrderLine, 0, len(view.Items)),
		PaymentMethod: view.PaymentMethod,
	}
	for _, item := range view.Items {
		order.Lines = append(order.Lines, backend.OrderLine{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			SKU:             item.SelectedSKU,
			TotalAmount:     item.Subtotal(),
			ShippingFee:     view.ShippingTotal,
			ShippingAddress: strings.TrimSpace(view.ShippingAddress),
			AppliedDiscount: item.AppliedDiscountID,
		})
	}

	if view.PaymentMethod == enums.PaymentMethodPrepaid {
		if err := s.orders.SubmitOrder(ctx, order); err != nil {
			return nil, err
		}
		if err := s.sessions.CleanSession(ctx, view.SessionID); err != nil && s.logger != nil {
			// The order is already placed; a sticky session is not worth
			// failing the purchase over.
			s.logger.Error(ctx, "cleaning checkout session after order placement", err)
		}
		return &SubmitResult{Status: SubmitStatusCompleted}, nil
	}

	paymentSessionID, err := s.sessions.CreatePaymentSession(ctx, order)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Status: SubmitStatusPaymentRequired, PaymentSessionID: paymentSessionID}, nil
}
