package pricing

import (
	"testing"

	"bakehouse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountFor(t *testing.T) {
	tiers := DefaultTiers()
	testCases := []struct {
		quantity int
		discount float64
		label    string
	}{
		{0, 0, ""},
		{1, 0, ""},
		{5, 0, ""},
		{6, 0.05, "5% off"},
		{12, 0.10, "10% off"},
		{35, 0.15, "15% off"},
		{48, 0.25, "25% off"},
		{500, 0.25, "25% off"},
	}
	for _, tc := range testCases {
		d, l := DiscountFor(tc.quantity, tiers)
		assert.Equal(t, tc.discount, d, "quantity %d", tc.quantity)
		assert.Equal(t, tc.label, l, "quantity %d", tc.quantity)
	}
}

func TestDiscountForSkipsInactiveAndSortsTiers(t *testing.T) {
	tiers := []models.DiscountTier{
		{Threshold: 6, Discount: 0.05, Label: "small", IsActive: true},
		{Threshold: 24, Discount: 0.2, Label: "big", IsActive: false},
		{Threshold: 12, Discount: 0.1, Label: "dozen", IsActive: true},
	}
	d, l := DiscountFor(30, tiers)
	assert.Equal(t, 0.1, d)
	assert.Equal(t, "dozen", l)

	d, _ = DiscountFor(3, nil)
	assert.Equal(t, 0.0, d)
}

func TestCalculatePrice(t *testing.T) {
	p := CalculatePrice(3.75, 12, DefaultTiers())
	assert.InDelta(t, 45.0, p.OriginalTotal, 1e-9)
	assert.InDelta(t, 40.5, p.DiscountedTotal, 1e-9)
	assert.InDelta(t, 4.5, p.Savings, 1e-9)
	assert.InDelta(t, 10.0, p.DiscountPercent, 1e-9)
	assert.InDelta(t, 3.375, float64(p.PricePerCookie), 1e-9)
}

func TestBatchPricing(t *testing.T) {
	rows := BatchPricing(4, DefaultTiers())
	require.Len(t, rows, 5)
	assert.Equal(t, 6, rows[0].Size)
	assert.Equal(t, "Half Dozen", rows[0].Label)
	assert.InDelta(t, 22.8, rows[0].Total, 1e-9)
	assert.Equal(t, "5% off", rows[0].DiscountLabel)
	assert.Equal(t, "4 Dozen", rows[4].Label)
	assert.InDelta(t, 3.0, float64(rows[4].PerCookie), 1e-9)
}

func TestCheckout(t *testing.T) {
	lines := []Line{
		{ProductID: 1, Quantity: 12, BasePrice: 3.75},
		{ProductID: 2, Quantity: 1, BasePrice: 5.25},
		{ProductID: 3, Quantity: 0, BasePrice: 9},
	}
	got := Checkout(lines, DefaultTiers(), 2)
	assert.InDelta(t, 50.25, got.Subtotal, 1e-9)
	assert.InDelta(t, 4.5, got.Discount, 1e-9)
	assert.Equal(t, ShippingFee, got.Shipping)
	assert.InDelta(t, 45.75*0.08, got.Tax, 1e-9)
	assert.InDelta(t, 45.75+5.99+3.66+2, got.Total, 1e-9)
}

func TestCheckoutEmptyCartHasNoShipping(t *testing.T) {
	got := Checkout(nil, DefaultTiers(), 0)
	assert.Equal(t, Totals{}, got)
}

func TestCalculatePriceZeroQuantityIsNotFinite(t *testing.T) {
	p := CalculatePrice(3.75, 0, DefaultTiers())
	assert.Equal(t, 0.0, p.OriginalTotal)
	assert.False(t, p.PricePerCookie.Finite())
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$3.75", FormatCurrency(3.75))
	assert.Equal(t, "$1234.50", FormatCurrency(1234.5))
	assert.Equal(t, "$0.01", FormatCurrency(0.005))
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "-$0.50", FormatCurrency(-0.5))
	assert.Equal(t, 2.68, RoundCents(2.675))
	assert.Equal(t, "Dozen", BatchLabel(12))
	assert.Equal(t, "10+", BatchLabel(10))
}
