package cart

import (
	"fmt"
	"math"
)

// Pricing holds the client-side charges shown under the cart. Amounts are
// integer cents so the summary never drifts by a rounding error.
type Pricing struct {
	DeliveryFeeCents int64
	TaxRate          float64
}

// DefaultPricing is a 2.99 delivery fee and 8% tax.
func DefaultPricing() Pricing {
	return Pricing{DeliveryFeeCents: 299, TaxRate: 0.08}
}

// NewPricing builds Pricing from a major-unit fee and a tax rate.
func NewPricing(deliveryFee, taxRate float64) Pricing {
	return Pricing{DeliveryFeeCents: Cents(deliveryFee), TaxRate: taxRate}
}

// Summary is the price breakdown of a cart, in cents.
type Summary struct {
	Subtotal    int64
	DeliveryFee int64
	Tax         int64
	Discount    int64
	Total       int64
}

// Summarize computes subtotal + delivery + tax - discount. The subtotal is
// the server's cartValue; item prices are never re-added locally.
func (p Pricing) Summarize(cartValue, discount float64) Summary {
	sub := Cents(cartValue)
	tax := int64(math.Round(float64(sub) * p.TaxRate))
	disc := Cents(discount)
	return Summary{
		Subtotal:    sub,
		DeliveryFee: p.DeliveryFeeCents,
		Tax:         tax,
		Discount:    disc,
		Total:       sub + p.DeliveryFeeCents + tax - disc,
	}
}

// Cents converts a major-unit amount to cents.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// FormatCents renders cents as $D.CC.
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
