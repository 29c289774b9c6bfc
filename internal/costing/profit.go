package costing

import (
	"math"

	"bakehouse/internal/measure"
	"bakehouse/internal/models"
	"bakehouse/internal/pricing"
)

// Profit is the calculator's profit analysis for a scaled batch sold at a
// list price with the volume discount for its quantity applied.
type Profit struct {
	SalePrice         float64       `json:"salePrice"`
	DiscountedPrice   float64       `json:"discountedPrice"`
	Discount          float64       `json:"discount"`
	DiscountLabel     string        `json:"discountLabel"`
	CostPerCookie     measure.Ratio `json:"costPerCookie"`
	ProfitPerCookie   measure.Ratio `json:"profitPerCookie"`
	ProfitMargin      measure.Ratio `json:"profitMargin"`
	GrossRevenue      float64       `json:"grossRevenue"`
	NetRevenue        float64       `json:"netRevenue"`
	TotalProfit       measure.Ratio `json:"totalProfit"`
	DiscountAmount    float64       `json:"discountAmount"`
	BreakEvenQuantity measure.Ratio `json:"breakEvenQuantity"`
}

// ProfitMetrics prices quantity cookies of a scaling. Margin and break-even
// are not guarded: a free or loss-making cookie gives a non-finite or
// negative result.
func ProfitMetrics(s Scaling, salePrice float64, quantity int, tiers []models.DiscountTier) Profit {
	discount, label := pricing.DiscountFor(quantity, tiers)
	q := float64(quantity)
	costPerCookie := float64(s.CostPerUnit)

	discounted := salePrice * (1 - discount)
	profitPerCookie := discounted - costPerCookie
	gross := salePrice * q
	net := discounted * q

	return Profit{
		SalePrice:         salePrice,
		DiscountedPrice:   discounted,
		Discount:          discount,
		DiscountLabel:     label,
		CostPerCookie:     s.CostPerUnit,
		ProfitPerCookie:   measure.Ratio(profitPerCookie),
		ProfitMargin:      measure.Ratio(profitPerCookie / discounted * 100),
		GrossRevenue:      gross,
		NetRevenue:        net,
		TotalProfit:       measure.Ratio(profitPerCookie * q),
		DiscountAmount:    gross - net,
		BreakEvenQuantity: measure.Ratio(math.Ceil(s.TotalCost / profitPerCookie)),
	}
}

// TierMargin previews the margin at one discount tier
type TierMargin struct {
	Threshold int           `json:"threshold"`
	Discount  float64       `json:"discount"`
	Label     string        `json:"label"`
	SalePrice float64       `json:"salePrice"`
	Profit    measure.Ratio `json:"profit"`
	Margin    measure.Ratio `json:"margin"`
}

// TierMargins shows how each active discount tier affects the margin of a
// cookie costing costPerUnit and listed at salePrice.
func TierMargins(costPerUnit measure.Ratio, salePrice float64, tiers []models.DiscountTier) []TierMargin {
	var out []TierMargin
	for _, t := range pricing.ActiveTiers(tiers) {
		if t.Threshold <= 0 {
			continue
		}
		price := salePrice * (1 - t.Discount)
		profit := price - float64(costPerUnit)
		out = append(out, TierMargin{
			Threshold: t.Threshold,
			Discount:  t.Discount,
			Label:     pricing.BatchLabel(t.Threshold),
			SalePrice: price,
			Profit:    measure.Ratio(profit),
			Margin:    measure.Ratio(profit / price * 100),
		})
	}
	return out
}
