// Package pricing computes tax, shipping and totals for carts and per-seller
// order groups. All money math runs on decimals and is rounded to cents only
// at the edges.
package pricing

import (
	"github.com/shopspring/decimal"

	"rebooks-backend/internal/models"
)

const (
	TaxRate          = 0.08
	BaseShippingFee  = 5.0
	InternationalFee = 10.0
)

var (
	taxRate         = decimal.NewFromFloat(TaxRate)
	baseShipping    = decimal.NewFromFloat(BaseShippingFee)
	internationalUp = decimal.NewFromFloat(InternationalFee)
)

// Quote is the priced breakdown for a set of items.
type Quote struct {
	Tax         float64
	ShippingFee float64
	Total       float64
}

// Calculate prices the given item prices. The international surcharge applies
// only when both locations are known and name different countries. An empty
// price list yields a zero subtotal but still carries the base shipping fee.
func Calculate(prices []float64, buyer, seller *models.Location) Quote {
	subtotal := decimal.Zero
	for _, p := range prices {
		subtotal = subtotal.Add(decimal.NewFromFloat(p))
	}

	tax := subtotal.Mul(taxRate).Round(2)

	shipping := baseShipping
	if buyer != nil && seller != nil && buyer.Country != seller.Country {
		shipping = shipping.Add(internationalUp)
	}
	shipping = shipping.Round(2)

	total := subtotal.Add(tax).Add(shipping).Round(2)

	return Quote{
		Tax:         tax.InexactFloat64(),
		ShippingFee: shipping.InexactFloat64(),
		Total:       total.InexactFloat64(),
	}
}

// Subtotal sums item prices on decimal math, rounded to cents.
func Subtotal(prices []float64) float64 {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(decimal.NewFromFloat(p))
	}
	return sum.Round(2).InexactFloat64()
}

// Apply writes the quote back onto a cart and returns it for chaining.
func (q Quote) Apply(cart *models.Cart) Quote {
	cart.Tax = q.Tax
	cart.ShippingFee = q.ShippingFee
	cart.Total = q.Total
	return q
}
