// Package core provides price handling utilities.
//
// Prices arrive as JSON numbers. Arithmetic and textual matching go through
// decimal.Decimal so that sums are exact and the string form of a price is the
// shortest representation that round-trips (19.99 -> "19.99", 100 -> "100").
package core

import (
	"github.com/shopspring/decimal"
)

// PriceDecimal returns the transaction price as an exact decimal.
func (t Transaction) PriceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(t.Price)
}

// PriceString returns the decimal string form of the price used by search.
func (t Transaction) PriceString() string {
	return t.PriceDecimal().String()
}

// SumPrices adds prices without accumulating floating-point error.
func SumPrices(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.PriceDecimal())
	}
	return total
}
