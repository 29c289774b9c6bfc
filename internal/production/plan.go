package production

import (
	"math"
	"sort"

	"bakehouse/internal/costing"
	"bakehouse/internal/models"
)

// IngredientNeed is the raw ingredient demand of the open orders
type IngredientNeed struct {
	Ingredient models.Ingredient `json:"ingredient"`
	Amount     float64           `json:"amount"`
	Have       float64           `json:"have"`
	After      float64           `json:"after"`
	Missing    float64           `json:"missing"`
}

// DoughUse is how many balls the plan pulls from one batch. DoughBall keeps
// the batch's quantity before the plan.
type DoughUse struct {
	DoughBall    models.DoughBall `json:"doughBall"`
	QuantityUsed int              `json:"quantityUsed"`
}

// DoughShortfall is the cookies of a recipe no batch could cover
type DoughShortfall struct {
	RecipeID   uint   `json:"recipeId"`
	RecipeName string `json:"recipeName"`
	Quantity   int    `json:"quantity"`
}

// DoughTotal summarizes dough on hand and planned use for a recipe
type DoughTotal struct {
	RecipeID       uint   `json:"recipeId"`
	RecipeName     string `json:"recipeName"`
	TotalAvailable int    `json:"totalAvailable"`
	TotalUsed      int    `json:"totalUsed"`
}

// Plan is the production plan for a set of orders
type Plan struct {
	Needed           []IngredientNeed `json:"needed"`
	DoughBallsUsed   []DoughUse       `json:"doughBallsUsed"`
	DoughBallsNeeded []DoughShortfall `json:"doughBallsNeeded"`
	DoughByRecipe    []DoughTotal     `json:"doughByRecipe"`
}

// PlanOrderIngredients works out what the open orders need. Dough balls are
// drawn oldest batch first across every batch of the item's recipe; cookies
// left over are made from raw ingredients. Nothing is mutated.
func PlanOrderIngredients(orders []models.Order, recipes costing.RecipeBook, ingredients costing.Catalog, dough []models.DoughBall) Plan {
	available := fifo(dough)
	remaining := make([]int, len(available))
	for i, d := range available {
		remaining[i] = d.Quantity
	}

	totals := map[uint]float64{}
	usedByRecipe := map[uint]int{}
	useIndex := map[uint]int{}
	plan := Plan{
		Needed:           []IngredientNeed{},
		DoughBallsUsed:   []DoughUse{},
		DoughBallsNeeded: []DoughShortfall{},
	}

	for _, order := range orders {
		if !IsOpen(order) {
			continue
		}
		for _, item := range order.Items {
			recipe, ok := recipes.Lookup(item.RecipeID)
			if !ok {
				continue
			}

			need := item.Quantity
			for i, d := range available {
				if need <= 0 {
					break
				}
				if d.RecipeID != recipe.ID || remaining[i] <= 0 {
					continue
				}
				take := min(remaining[i], need)
				if at, seen := useIndex[d.ID]; seen {
					plan.DoughBallsUsed[at].QuantityUsed += take
				} else {
					useIndex[d.ID] = len(plan.DoughBallsUsed)
					plan.DoughBallsUsed = append(plan.DoughBallsUsed, DoughUse{DoughBall: d, QuantityUsed: take})
				}
				remaining[i] -= take
				need -= take
				usedByRecipe[recipe.ID] += take
			}

			if need > 0 {
				multiplier := float64(need) / recipe.BaseYield
				for _, ri := range recipe.Ingredients {
					totals[ri.IngredientID] += ri.Amount * multiplier
				}
				plan.DoughBallsNeeded = append(plan.DoughBallsNeeded, DoughShortfall{
					RecipeID:   recipe.ID,
					RecipeName: recipe.DisplayName,
					Quantity:   need,
				})
			}
		}
	}

	ids := make([]uint, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		ing, ok := ingredients[id]
		if !ok {
			continue
		}
		amount := totals[id]
		after := ing.CurrentStock - amount
		plan.Needed = append(plan.Needed, IngredientNeed{
			Ingredient: ing,
			Amount:     amount,
			Have:       ing.CurrentStock,
			After:      after,
			Missing:    math.Max(0, -after),
		})
	}

	plan.DoughByRecipe = doughTotals(dough, usedByRecipe)
	return plan
}

func fifo(dough []models.DoughBall) []models.DoughBall {
	out := append([]models.DoughBall(nil), dough...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func doughTotals(dough []models.DoughBall, used map[uint]int) []DoughTotal {
	byRecipe := map[uint]*DoughTotal{}
	var order []uint
	for _, d := range dough {
		t, ok := byRecipe[d.RecipeID]
		if !ok {
			t = &DoughTotal{RecipeID: d.RecipeID, RecipeName: d.RecipeName}
			byRecipe[d.RecipeID] = t
			order = append(order, d.RecipeID)
		}
		t.TotalAvailable += d.Quantity
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]DoughTotal, 0, len(order))
	for _, id := range order {
		t := byRecipe[id]
		t.TotalUsed = used[id]
		out = append(out, *t)
	}
	return out
}
