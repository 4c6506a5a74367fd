// Package money converts between decimal major units and integer minor units.
package money

import "github.com/shopspring/decimal"

// DefaultFactor is the number of minor units in one major unit.
const DefaultFactor = 100

// ToMinorUnits rounds amount*factor half away from zero to an integer.
func ToMinorUnits(amount decimal.Decimal, factor int64) int64 {
	return amount.Mul(decimal.NewFromInt(factor)).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64, factor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(factor))
}

// Percent returns amount*pct/100 rounded half up to a whole minor unit.
func Percent(amount int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(pct).Div(decimal.NewFromInt(100)).Round(0).IntPart()
}
