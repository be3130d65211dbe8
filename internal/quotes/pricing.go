package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/ceramicarte/preventivi-backend/pkg/types"
)

// Totals is the money summary of a quote. All amounts are rounded to
// cents, with the discount rounded before the total is derived so the
// three figures always reconcile.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals derives the quote totals from its lines and a discount
// percentage. The discount is clamped to the 0..100 range.
func ComputeTotals(items types.QuoteItems, discountPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	subtotal = subtotal.Round(2)

	if discountPercent.IsNegative() {
		discountPercent = decimal.Zero
	}
	if discountPercent.GreaterThan(oneHundred) {
		discountPercent = oneHundred
	}

	discountAmount := subtotal.Mul(discountPercent).Div(oneHundred).Round(2)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          subtotal.Sub(discountAmount),
	}
}
