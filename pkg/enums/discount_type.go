package enums

// DiscountType classifies a promotional rule's effect. The set is open on the
// server side; anything the gateway does not recognize as a shipping
// reduction is treated as a percentage off the item price.
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFreeShipping DiscountType = "free-shipping"
)

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsShipping reports whether the discount reduces the shipping portion of the
// order instead of the item price.
func (d DiscountType) IsShipping() bool {
	return d == DiscountTypeFreeShipping
}
