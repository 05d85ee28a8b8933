package enums

import "fmt"

// DiscountType controls how a coupon reduces an order total.
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFlat    DiscountType = "flat"
)

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountType.
func (d DiscountType) IsValid() bool {
	return d == DiscountTypePercent || d == DiscountTypeFlat
}

// ParseDiscountType converts raw input into DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	d := DiscountType(value)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid discount type %q", value)
	}
	return d, nil
}
