package enums

import "fmt"

// PaymentMethod describes how the shopper intends to settle the order.
type PaymentMethod string

const (
	// PaymentMethodPrepaid settles immediately at submission; the order is
	// placed and the checkout session cleaned in one step.
	PaymentMethodPrepaid PaymentMethod = "prepaid"
	// PaymentMethodGateway defers settlement to the payment-selection view
	// keyed by a freshly created payment session.
	PaymentMethodGateway PaymentMethod = "gateway"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodPrepaid,
	PaymentMethodGateway,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
