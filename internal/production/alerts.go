package production

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bakehouse/internal/costing"
	"bakehouse/internal/models"
)

// CheckInventory builds the stock alerts for the current inventory: one per
// ingredient that is out or below threshold, and one per active product
// whose recipe cannot be made once from what is in stock.
func CheckInventory(ingredients []models.Ingredient, recipes costing.RecipeBook, products []models.Product, now time.Time) []models.Notification {
	var out []models.Notification

	for _, ing := range ingredients {
		id := ing.ID
		switch ing.StockStatus() {
		case models.StockOutOfStock:
			out = append(out, models.Notification{
				Type:         models.NotificationOutOfStock,
				Title:        "Out of Stock",
				Message:      fmt.Sprintf("%s is completely out of stock!", ing.Name),
				Timestamp:    now,
				IngredientID: &id,
				Severity:     models.SeverityCritical,
			})
		case models.StockLow:
			out = append(out, models.Notification{
				Type:  models.NotificationLowStock,
				Title: "Low Stock Warning",
				Message: fmt.Sprintf("%s is running low (%s %s remaining, threshold: %s)",
					ing.Name, number(ing.CurrentStock), ing.Unit, number(ing.MinThreshold)),
				Timestamp:    now,
				IngredientID: &id,
				Severity:     models.SeverityWarning,
			})
		}
	}

	stock := costing.NewCatalog(ingredients)
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		recipe, ok := recipes.Lookup(p.RecipeID)
		if !ok {
			continue
		}
		var short []string
		for _, ri := range recipe.Ingredients {
			ing, ok := stock[ri.IngredientID]
			if !ok {
				continue
			}
			if ing.CurrentStock < ri.Amount {
				short = append(short, ing.Name)
			}
		}
		if len(short) == 0 {
			continue
		}
		id := p.ID
		out = append(out, models.Notification{
			Type:      models.NotificationProductUnavailable,
			Title:     "Product Availability Alert",
			Message:   fmt.Sprintf("%s cannot be made due to insufficient: %s", p.Name, strings.Join(short, ", ")),
			Timestamp: now,
			ProductID: &id,
			Severity:  models.SeverityCritical,
		})
	}
	return out
}

func number(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
