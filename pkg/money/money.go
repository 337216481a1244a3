// Package money holds the rounding and formatting rules for monetary values.
//
// All arithmetic is done on decimal.Decimal at full precision; values are
// rounded to two places only when they are stored or displayed.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for stored amounts.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round2 rounds a value half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent returns amount*percent/100 at full precision.
func Percent(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// Sum adds the given values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// IsPercent reports whether d lies in the closed range [0, 100] and has no
// more than two decimal places, so it is stored exactly.
func IsPercent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred) && d.Equal(Round2(d))
}

// PercentMessage describes the values IsPercent accepts.
const PercentMessage = "must be between 0 and 100 with at most 2 decimal places"

// Format renders a value with two decimals and the currency symbol as prefix,
// e.g. "₹315.00". Negative values keep the sign in front of the symbol.
func Format(symbol string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + symbol + d.Abs().StringFixed(Places)
	}
	return symbol + d.StringFixed(Places)
}

// Float converts a value to float64 for JSON responses.
func Float(d decimal.Decimal) float64 {
	return d.Round(Places).InexactFloat64()
}
