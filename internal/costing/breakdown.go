package costing

import (
	"bakehouse/internal/measure"
	"bakehouse/internal/models"
)

// IngredientCost is the amount and cost of one ingredient in an order item
type IngredientCost struct {
	IngredientID uint    `json:"ingredientId"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
	Cost         float64 `json:"cost"`
}

// ItemCost is the ingredient cost and profit of one order line
type ItemCost struct {
	ProductName         string           `json:"productName"`
	Quantity            int              `json:"quantity"`
	Revenue             float64          `json:"revenue"`
	Ingredients         []IngredientCost `json:"ingredients"`
	TotalIngredientCost float64          `json:"totalIngredientCost"`
	CostPerCookie       measure.Ratio    `json:"costPerCookie"`
	ProfitPerCookie     measure.Ratio    `json:"profitPerCookie"`
	ProfitMargin        float64          `json:"profitMargin"`
}

// OrderCosts is the cost breakdown of a whole order
type OrderCosts struct {
	Items               []ItemCost `json:"items"`
	TotalIngredientCost float64    `json:"totalIngredientCost"`
	TotalRevenue        float64    `json:"totalRevenue"`
	GrossProfit         float64    `json:"grossProfit"`
	OverallMargin       float64    `json:"overallMargin"`
}

// OrderCostBreakdown costs every order line from its recipe, scaled by
// quantity over base yield. Ingredients are valued at their weighted-average
// cost, or package price before any stock was valued. Lines without a known
// recipe cost nothing.
func OrderCostBreakdown(order models.Order, recipes RecipeBook, ingredients Catalog) OrderCosts {
	out := OrderCosts{TotalRevenue: order.Subtotal - order.Discount}

	for _, item := range order.Items {
		revenue := item.PriceEach * float64(item.Quantity)
		recipe, ok := recipes.Lookup(item.RecipeID)
		if !ok {
			out.Items = append(out.Items, ItemCost{
				ProductName:     item.ProductName,
				Quantity:        item.Quantity,
				Revenue:         revenue,
				Ingredients:     []IngredientCost{},
				ProfitPerCookie: measure.Ratio(item.PriceEach),
				ProfitMargin:    100,
			})
			continue
		}

		multiplier := float64(item.Quantity) / recipe.BaseYield
		lines, cost, _ := scaleLines(recipe, ingredients, multiplier, models.Ingredient.EffectiveCostPerUnit)

		details := make([]IngredientCost, 0, len(lines))
		for _, l := range lines {
			details = append(details, IngredientCost{
				IngredientID: l.Ingredient.ID,
				Name:         l.Ingredient.Name,
				Amount:       l.ScaledAmount,
				Unit:         l.Ingredient.Unit,
				Cost:         l.Cost,
			})
		}

		perCookie := cost / float64(item.Quantity)
		out.Items = append(out.Items, ItemCost{
			ProductName:         item.ProductName,
			Quantity:            item.Quantity,
			Revenue:             revenue,
			Ingredients:         details,
			TotalIngredientCost: cost,
			CostPerCookie:       measure.Ratio(perCookie),
			ProfitPerCookie:     measure.Ratio(item.PriceEach - perCookie),
			ProfitMargin:        marginPercent(revenue, cost),
		})
		out.TotalIngredientCost += cost
	}

	out.GrossProfit = out.TotalRevenue - out.TotalIngredientCost
	out.OverallMargin = marginPercent(out.TotalRevenue, out.TotalIngredientCost)
	return out
}

// marginPercent is (revenue-cost)/revenue as a percentage, 0 without revenue
func marginPercent(revenue, cost float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return (revenue - cost) / revenue * 100
}
