// internal/core/domain/money.go
package domain

import "github.com/shopspring/decimal"

// AmountEpsilon is the tolerance used when comparing currency amounts.
// Derived totals are recomputed whenever they drift beyond it.
var AmountEpsilon = decimal.NewFromFloat(0.01)

// RoundAmount rounds a currency amount to 2 decimal places. Every derived
// computation (line totals, transaction totals, stock value) passes through
// here before being stored or compared.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AmountsEqual reports whether two currency amounts are equal within
// AmountEpsilon.
func AmountsEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(AmountEpsilon)
}

// MulQuantity multiplies a unit price by an integer quantity and rounds.
func MulQuantity(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return RoundAmount(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}
