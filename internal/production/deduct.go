package production

import (
	"bakehouse/internal/costing"
	"bakehouse/internal/models"
)

// Deduction is the stock change caused by starting an order. Ingredients
// holds the updated records in the order they were first touched.
type Deduction struct {
	Ingredients  []models.Ingredient `json:"ingredients"`
	DoughUpdates []models.DoughBall  `json:"doughUpdates"`
	DoughDeletes []uint              `json:"doughDeletes"`
}

// Empty reports whether the deduction changes nothing
func (d Deduction) Empty() bool {
	return len(d.Ingredients) == 0 && len(d.DoughUpdates) == 0 && len(d.DoughDeletes) == 0
}

// NeedsDeduction reports whether moving order to status should consume stock
func NeedsDeduction(order models.Order, status models.OrderStatus, requested bool) bool {
	return requested && !order.IngredientsDeducted && ShouldDeduct(status)
}

// PlanDeduction works out what starting order consumes. Each item with a
// recipe is taken whole from the oldest single dough batch that can cover
// it; otherwise its raw ingredients are deducted at weighted-average cost.
// Deductions for one ingredient accumulate across items.
func PlanDeduction(order models.Order, recipes costing.RecipeBook, ingredients costing.Catalog, dough []models.DoughBall) Deduction {
	stock := ingredients.Clone()
	batches := fifo(dough)
	touched := map[uint]bool{}
	var touchOrder []uint
	doughTouched := map[int]bool{}

	for _, item := range order.Items {
		recipe, ok := recipes.Lookup(item.RecipeID)
		if !ok {
			continue
		}

		if i := coveringBatch(batches, recipe.ID, item.Quantity); i >= 0 {
			batches[i].Quantity -= item.Quantity
			doughTouched[i] = true
			continue
		}

		multiplier := float64(item.Quantity) / recipe.BaseYield
		for _, id := range costing.ConsumeRecipe(stock, recipe, multiplier) {
			if !touched[id] {
				touched[id] = true
				touchOrder = append(touchOrder, id)
			}
		}
	}

	var d Deduction
	for _, id := range touchOrder {
		d.Ingredients = append(d.Ingredients, stock[id])
	}
	for i, b := range batches {
		if !doughTouched[i] {
			continue
		}
		if b.Quantity <= 0 {
			d.DoughDeletes = append(d.DoughDeletes, b.ID)
		} else {
			d.DoughUpdates = append(d.DoughUpdates, b)
		}
	}
	return d
}

func coveringBatch(batches []models.DoughBall, recipeID uint, quantity int) int {
	for i, b := range batches {
		if b.RecipeID == recipeID && b.Quantity > 0 && b.Quantity >= quantity {
			return i
		}
	}
	return -1
}
