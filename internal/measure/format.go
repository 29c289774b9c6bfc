package measure

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// fractionTolerance is how far a remainder may sit from a culinary fraction
// and still be shown as that fraction.
const fractionTolerance = 0.06

var fractions = []struct {
	value  float64
	symbol string
}{
	{0.125, "⅛"},
	{0.25, "¼"},
	{0.333, "⅓"},
	{0.375, "⅜"},
	{0.5, "½"},
	{0.625, "⅝"},
	{0.666, "⅔"},
	{0.75, "¾"},
	{0.875, "⅞"},
}

// FormatAmount renders an amount with precision scaled to its magnitude.
func FormatAmount(amount float64) string {
	switch {
	case amount == 0:
		return "0"
	case amount < 0.01:
		return toFixed(amount, 4)
	case amount < 0.1:
		return toFixed(amount, 3)
	case amount < 1:
		return toFixed(amount, 2)
	case amount < 10:
		return trimZeros(toFixed(amount, 2))
	case amount < 100:
		return trimZeros(toFixed(amount, 1))
	default:
		return formatNumber(math.Floor(amount + 0.5))
	}
}

// FormatAsFraction renders small amounts the way cooks read them ("1 ¼",
// "⅔"), falling back to FormatAmount when no common fraction is close.
func FormatAsFraction(amount float64) string {
	if amount == 0 {
		return "0"
	}

	whole := math.Floor(amount)
	remainder := amount - whole

	symbol := ""
	closest := 0.1
	for _, f := range fractions {
		diff := math.Abs(remainder - f.value)
		if diff < closest {
			closest = diff
			symbol = f.symbol
		}
	}

	if symbol != "" && closest < fractionTolerance {
		if whole > 0 {
			return formatNumber(whole) + " " + symbol
		}
		return symbol
	}
	return FormatAmount(amount)
}

// toFixed formats with n decimals, rounding halves away from zero on the
// exact binary value.
func toFixed(x float64, n int) string {
	if s, ok := nonFinite(x); ok {
		return s
	}
	return new(big.Rat).SetFloat64(x).FloatString(n)
}

func formatNumber(x float64) string {
	if s, ok := nonFinite(x); ok {
		return s
	}
	if x == 0 {
		return "0"
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func nonFinite(x float64) (string, bool) {
	switch {
	case math.IsNaN(x):
		return "NaN", true
	case math.IsInf(x, 1):
		return "Infinity", true
	case math.IsInf(x, -1):
		return "-Infinity", true
	}
	return "", false
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
