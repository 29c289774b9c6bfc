package database

import (
	"context"
	"fmt"

	"bakehouse/internal/models"
	"bakehouse/internal/pricing"
	"bakehouse/internal/realtime"

	"github.com/jinzhu/gorm"
)

func defaultIngredients() []models.Ingredient {
	return []models.Ingredient{
		{Name: "All-Purpose Flour", Unit: "g", PackageSize: 2268, PackagePrice: 4.29, Category: string(models.IngredientCategoryDry), CurrentStock: 4536, MinThreshold: 1000, ReorderAmount: 2268},
		{Name: "Granulated Sugar", Unit: "g", PackageSize: 1814, PackagePrice: 3.49, Category: string(models.IngredientCategoryDry), CurrentStock: 1814, MinThreshold: 500, ReorderAmount: 1814},
		{Name: "Brown Sugar", Unit: "g", PackageSize: 907, PackagePrice: 2.99, Category: string(models.IngredientCategoryDry), CurrentStock: 907, MinThreshold: 400, ReorderAmount: 907},
		{Name: "Unsalted Butter", Unit: "g", PackageSize: 454, PackagePrice: 4.99, Category: string(models.IngredientCategoryDairy), CurrentStock: 908, MinThreshold: 454, ReorderAmount: 908},
		{Name: "Eggs", Unit: "each", PackageSize: 12, PackagePrice: 3.99, Category: string(models.IngredientCategoryDairy), CurrentStock: 24, MinThreshold: 6, ReorderAmount: 12},
		{Name: "Semi-Sweet Chocolate Chips", Unit: "g", PackageSize: 340, PackagePrice: 3.79, Category: string(models.IngredientCategoryMixIn), CurrentStock: 680, MinThreshold: 340, ReorderAmount: 680},
		{Name: "Vanilla Extract", Unit: "ml", PackageSize: 118, PackagePrice: 8.99, Category: string(models.IngredientCategoryWet), CurrentStock: 118, MinThreshold: 30, ReorderAmount: 118},
		{Name: "Baking Soda", Unit: "g", PackageSize: 454, PackagePrice: 1.29, Category: string(models.IngredientCategoryDry), CurrentStock: 454, MinThreshold: 50, ReorderAmount: 454},
		{Name: "Sea Salt", Unit: "g", PackageSize: 737, PackagePrice: 2.49, Category: string(models.IngredientCategoryDry), CurrentStock: 737, MinThreshold: 50, ReorderAmount: 737},
	}
}

// chocolateChip lines by ingredient name, for 24 cookies of 60 g
var chocolateChip = []struct {
	name     string
	amount   float64
	category string
}{
	{"All-Purpose Flour", 562, "Dry"},
	{"Baking Soda", 6, "Dry"},
	{"Sea Salt", 6, "Dry"},
	{"Unsalted Butter", 227, "Wet"},
	{"Granulated Sugar", 200, "Dry"},
	{"Brown Sugar", 220, "Dry"},
	{"Eggs", 2, "Wet"},
	{"Vanilla Extract", 10, "Wet"},
	{"Semi-Sweet Chocolate Chips", 340, "Mix-in"},
}

// Seed fills the catalog tables with the default bakery setup. Tables that
// already hold rows are left alone.
func (s *Store) Seed(ctx context.Context) error {
	var seeded []string
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		seeded, err = seed(tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	for _, c := range seeded {
		s.log.Info("seeded defaults", "collection", c)
		s.publishAll(c, realtime.ActionCreated)
	}
	return nil
}

// Reset deletes the catalog and reseeds it with defaults. Orders, dough
// balls and notifications are kept.
func (s *Store) Reset(ctx context.Context) error {
	var seeded []string
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.Ingredient{}, &models.Recipe{}, &models.Product{}, &models.DiscountTier{}} {
			if err := tx.Unscoped().Delete(m).Error; err != nil {
				return err
			}
		}
		var err error
		seeded, err = seed(tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("reset to defaults: %w", err)
	}
	s.log.Warn("catalog reset to defaults")
	for _, c := range seeded {
		s.publishAll(c, realtime.ActionUpdated)
	}
	return nil
}

func seed(tx *gorm.DB) ([]string, error) {
	var seeded []string

	empty := func(model interface{}) (bool, error) {
		var n int
		err := tx.Model(model).Count(&n).Error
		return n == 0, err
	}

	ingredientIDs := map[string]uint{}
	ok, err := empty(&models.Ingredient{})
	if err != nil {
		return nil, err
	}
	if ok {
		for _, ing := range defaultIngredients() {
			ing := ing
			if err := tx.Create(&ing).Error; err != nil {
				return nil, fmt.Errorf("ingredient %s: %w", ing.Name, err)
			}
			ingredientIDs[ing.Name] = ing.ID
		}
		seeded = append(seeded, CollectionIngredients)
	} else {
		var existing []models.Ingredient
		if err := tx.Find(&existing).Error; err != nil {
			return nil, err
		}
		for _, ing := range existing {
			ingredientIDs[ing.Name] = ing.ID
		}
	}

	var recipeID *uint
	ok, err = empty(&models.Recipe{})
	if err != nil {
		return nil, err
	}
	if ok {
		recipe := models.Recipe{
			Name:           "chocolate-chip",
			DisplayName:    "Moonlight Morsels",
			BaseYield:      24,
			BaseCookieSize: 60,
			TotalDough:     1440,
			OvenTemp:       "350°F",
			BakeTime:       "11-13 minutes",
			Instructions:   "Cream butter and sugars. Beat in eggs and vanilla. Mix in dry ingredients, fold in chips. Portion and chill before baking.",
		}
		for _, line := range chocolateChip {
			id, found := ingredientIDs[line.name]
			if !found {
				continue
			}
			recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
				IngredientID: id,
				Amount:       line.amount,
				Category:     line.category,
			})
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return nil, fmt.Errorf("recipe %s: %w", recipe.Name, err)
		}
		recipeID = &recipe.ID
		seeded = append(seeded, CollectionRecipes)
	}

	ok, err = empty(&models.Product{})
	if err != nil {
		return nil, err
	}
	if ok {
		products := []models.Product{
			{
				Name:        "Moonlight Morsels",
				Description: "Classic chocolate chip with a crisp edge and a soft middle.",
				Price:       3.75,
				Flavor:      "Chocolate Chip",
				RecipeID:    recipeID,
				IsActive:    true,
				NutritionalFacts: models.NutritionalFacts{
					Calories: 260, Fat: 13, SaturatedFat: 8, Carbohydrates: 34,
					Sugars: 20, Protein: 3, Fiber: 1, Sodium: 180,
					Allergens: "wheat, milk, eggs, soy",
				},
			},
			{
				Name:        "Midnight Obsidian",
				Description: "Dark cocoa dough loaded with bittersweet chunks.",
				Price:       5.00,
				Flavor:      "Double Chocolate",
				IsActive:    true,
			},
		}
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return nil, fmt.Errorf("product %s: %w", products[i].Name, err)
			}
		}
		seeded = append(seeded, CollectionProducts)
	}

	ok, err = empty(&models.DiscountTier{})
	if err != nil {
		return nil, err
	}
	if ok {
		for _, t := range pricing.DefaultTiers() {
			t := t
			if err := tx.Create(&t).Error; err != nil {
				return nil, fmt.Errorf("discount tier %d: %w", t.Threshold, err)
			}
		}
		seeded = append(seeded, CollectionDiscountTiers)
	}

	return seeded, nil
}
