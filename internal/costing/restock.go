package costing

import (
	"math"
	"time"

	"bakehouse/internal/measure"
	"bakehouse/internal/models"
)

// RestockEvent describes a purchase added to stock. Amount is in Unit, which
// may differ from the ingredient's storage unit. Density bridges weight and
// volume (g/ml) and defaults to water when zero. A zero At leaves
// LastRestocked untouched.
type RestockEvent struct {
	Amount        float64      `json:"amount"`
	Unit          measure.Unit `json:"unit"`
	PurchasePrice float64      `json:"purchasePrice"`
	Density       float64      `json:"density,omitempty"`
	At            time.Time    `json:"at"`
}

// ApplyRestock adds a purchase to stock and recomputes the weighted-average
// cost per unit.
func ApplyRestock(ing models.Ingredient, amount float64, unit measure.Unit, purchasePrice float64) models.Ingredient {
	return ApplyRestockEvent(ing, RestockEvent{Amount: amount, Unit: unit, PurchasePrice: purchasePrice})
}

// ApplyRestockEvent is ApplyRestock with optional density and timestamp.
// Amounts and prices are not validated; a negative event reduces stock and
// value.
func ApplyRestockEvent(ing models.Ingredient, ev RestockEvent) models.Ingredient {
	density := ev.Density
	if density == 0 {
		density = measure.DefaultDensity
	}
	added := measure.ConvertWithDensity(ev.Amount, ev.Unit, ing.StorageUnit(), density)

	ing.CurrentStock += added
	ing.StockValue += ev.PurchasePrice
	if ing.CurrentStock > 0 {
		ing.CostPerUnit = ing.StockValue / ing.CurrentStock
	} else {
		ing.CostPerUnit = 0
	}
	if !ev.At.IsZero() {
		at := ev.At
		ing.LastRestocked = &at
	}
	return ing
}

// Deduct removes amountUsed (storage unit) from stock, valued at the
// ingredient's weighted-average cost. Stock and value never go below zero.
// CostPerUnit is left as is.
func Deduct(ing models.Ingredient, amountUsed float64) models.Ingredient {
	valueUsed := amountUsed * ing.CostPerUnit
	ing.CurrentStock = math.Max(0, ing.CurrentStock-amountUsed)
	ing.StockValue = math.Max(0, ing.StockValue-valueUsed)
	return ing
}

// ConsumeRecipe deducts multiplier base batches of recipe from stock in
// place and returns the IDs it touched, in recipe order. Missing
// ingredients are skipped.
func ConsumeRecipe(stock Catalog, recipe models.Recipe, multiplier float64) []uint {
	var touched []uint
	for _, ri := range recipe.Ingredients {
		ing, ok := stock[ri.IngredientID]
		if !ok {
			continue
		}
		stock[ri.IngredientID] = Deduct(ing, ri.Amount*multiplier)
		touched = append(touched, ri.IngredientID)
	}
	return touched
}
