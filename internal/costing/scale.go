package costing

import (
	"bakehouse/internal/measure"
	"bakehouse/internal/models"
)

// ScaledIngredient is one recipe line at a target production size.
// Amounts are in the ingredient's storage unit.
type ScaledIngredient struct {
	Ingredient   models.Ingredient `json:"ingredient"`
	BaseAmount   float64           `json:"baseAmount"`
	ScaledAmount float64           `json:"scaledAmount"`
	UnitCost     float64           `json:"unitCost"`
	Cost         float64           `json:"cost"`
	Category     string            `json:"category"`
}

// Scaling is a recipe scaled to a target count and cookie weight.
// Skipped lists ingredient IDs the recipe references but the catalog lacks.
type Scaling struct {
	ScaleFactor measure.Ratio      `json:"scaleFactor"`
	Ingredients []ScaledIngredient `json:"ingredients"`
	TotalCost   float64            `json:"totalCost"`
	CostPerUnit measure.Ratio      `json:"costPerUnit"`
	TotalDough  float64            `json:"totalDough"`
	Skipped     []uint             `json:"skipped,omitempty"`
}

// ScaleRecipe scales recipe by total dough mass: targetCount cookies of
// targetUnitWeight grams against the recipe's base yield and cookie size.
// Lines are costed at package price. A zero targetCount or a zero base
// mass yields a non-finite CostPerUnit or ScaleFactor.
func ScaleRecipe(recipe models.Recipe, ingredients Catalog, targetCount, targetUnitWeight float64) Scaling {
	targetMass := targetCount * targetUnitWeight
	factor := targetMass / recipe.BaseDoughMass()

	lines, total, skipped := scaleLines(recipe, ingredients, factor, models.Ingredient.PackageUnitCost)
	return Scaling{
		ScaleFactor: measure.Ratio(factor),
		Ingredients: lines,
		TotalCost:   total,
		CostPerUnit: measure.Ratio(total / targetCount),
		TotalDough:  targetMass,
		Skipped:     skipped,
	}
}

// scaleLines multiplies every recipe line by factor and prices it with
// unitCost. Lines whose ingredient is missing are reported, not priced.
func scaleLines(recipe models.Recipe, ingredients Catalog, factor float64, unitCost func(models.Ingredient) float64) ([]ScaledIngredient, float64, []uint) {
	var (
		lines   []ScaledIngredient
		skipped []uint
		total   float64
	)
	for _, ri := range recipe.Ingredients {
		ing, ok := ingredients[ri.IngredientID]
		if !ok {
			skipped = append(skipped, ri.IngredientID)
			continue
		}
		uc := unitCost(ing)
		scaled := ri.Amount * factor
		cost := uc * scaled
		lines = append(lines, ScaledIngredient{
			Ingredient:   ing,
			BaseAmount:   ri.Amount,
			ScaledAmount: scaled,
			UnitCost:     uc,
			Cost:         cost,
			Category:     ri.Category,
		})
		total += cost
	}
	return lines, total, skipped
}
