// Package pricing computes storefront prices: volume discounts by quantity,
// batch price previews and checkout totals.
package pricing

import (
	"sort"
	"strconv"

	"bakehouse/internal/measure"
	"bakehouse/internal/models"
)

const (
	// ShippingFee is charged on every non-empty order
	ShippingFee = 5.99
	// TaxRate applies to the discounted subtotal
	TaxRate = 0.08
)

// BatchSizes are the quantities offered in the storefront
var BatchSizes = []int{1, 6, 12, 24, 36, 48}

var batchLabels = map[int]string{
	1:  "Single",
	6:  "Half Dozen",
	12: "Dozen",
	24: "2 Dozen",
	36: "3 Dozen",
	48: "4 Dozen",
}

// BatchLabel names a batch size, or "N+" for sizes not sold as a batch
func BatchLabel(size int) string {
	if l, ok := batchLabels[size]; ok {
		return l
	}
	return strconv.Itoa(size) + "+"
}

// DefaultTiers returns the volume discounts used when none are configured.
func DefaultTiers() []models.DiscountTier {
	return []models.DiscountTier{
		{Threshold: 48, Discount: 0.25, Label: "25% off", IsActive: true},
		{Threshold: 36, Discount: 0.20, Label: "20% off", IsActive: true},
		{Threshold: 24, Discount: 0.15, Label: "15% off", IsActive: true},
		{Threshold: 12, Discount: 0.10, Label: "10% off", IsActive: true},
		{Threshold: 6, Discount: 0.05, Label: "5% off", IsActive: true},
		{Threshold: 1, Discount: 0, Label: "", IsActive: true},
	}
}

// ActiveTiers returns the active tiers sorted by threshold, highest first.
func ActiveTiers(tiers []models.DiscountTier) []models.DiscountTier {
	out := make([]models.DiscountTier, 0, len(tiers))
	for _, t := range tiers {
		if t.IsActive {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Threshold > out[j].Threshold
	})
	return out
}

// DiscountFor returns the discount fraction and label of the highest tier
// whose threshold quantity reaches.
func DiscountFor(quantity int, tiers []models.DiscountTier) (float64, string) {
	for _, t := range ActiveTiers(tiers) {
		if quantity >= t.Threshold {
			return t.Discount, t.Label
		}
	}
	return 0, ""
}

// Price is the cost of buying quantity cookies at a base price
type Price struct {
	OriginalTotal   float64       `json:"originalTotal"`
	DiscountedTotal float64       `json:"discountedTotal"`
	Savings         float64       `json:"savings"`
	DiscountPercent float64       `json:"discountPercent"`
	PricePerCookie  measure.Ratio `json:"pricePerCookie"`
}

// CalculatePrice applies the volume discount for quantity. PricePerCookie
// is not finite when quantity is 0.
func CalculatePrice(basePrice float64, quantity int, tiers []models.DiscountTier) Price {
	original := basePrice * float64(quantity)
	discount, _ := DiscountFor(quantity, tiers)
	discounted := original * (1 - discount)
	return Price{
		OriginalTotal:   original,
		DiscountedTotal: discounted,
		Savings:         original - discounted,
		DiscountPercent: discount * 100,
		PricePerCookie:  measure.Ratio(discounted / float64(quantity)),
	}
}

// BatchPrice is one row of a product's batch price preview
type BatchPrice struct {
	Size          int           `json:"size"`
	Label         string        `json:"label"`
	Total         float64       `json:"total"`
	PerCookie     measure.Ratio `json:"perCookie"`
	Savings       float64       `json:"savings"`
	DiscountLabel string        `json:"discountLabel"`
}

// BatchPricing previews every multi-cookie batch size for a base price.
func BatchPricing(basePrice float64, tiers []models.DiscountTier) []BatchPrice {
	var out []BatchPrice
	for _, size := range BatchSizes {
		if size <= 1 {
			continue
		}
		p := CalculatePrice(basePrice, size, tiers)
		_, label := DiscountFor(size, tiers)
		out = append(out, BatchPrice{
			Size:          size,
			Label:         BatchLabel(size),
			Total:         p.DiscountedTotal,
			PerCookie:     p.PricePerCookie,
			Savings:       p.Savings,
			DiscountLabel: label,
		})
	}
	return out
}

// Line is one cart entry
type Line struct {
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	BasePrice float64 `json:"basePrice"`
}

// Totals are the amounts shown at checkout. Subtotal is before discount.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Tip      float64 `json:"tip"`
	Total    float64 `json:"total"`
}

// Checkout totals a cart. Each line is discounted by its own quantity.
func Checkout(lines []Line, tiers []models.DiscountTier, tip float64) Totals {
	var t Totals
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		p := CalculatePrice(l.BasePrice, l.Quantity, tiers)
		t.Subtotal += p.OriginalTotal
		t.Discount += p.Savings
	}
	net := t.Subtotal - t.Discount
	if net > 0 {
		t.Shipping = ShippingFee
	}
	t.Tax = net * TaxRate
	t.Tip = tip
	t.Total = net + t.Shipping + t.Tax + t.Tip
	return t
}
