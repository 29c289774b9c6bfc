package pricing

import "github.com/shopspring/decimal"

// FormatCurrency renders a dollar amount with two decimals, e.g. "$3.75"
// or "-$0.50".
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// RoundCents rounds a dollar amount to whole cents.
func RoundCents(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}
