package models

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/gorm"
)

// Recipe is a named dough formula. Ingredient amounts are expressed in each
// ingredient's storage unit for BaseYield cookies of BaseCookieSize grams.
type Recipe struct {
	gorm.Model
	Name            string  `json:"name"`
	DisplayName     string  `json:"displayName"`
	BaseYield       float64 `json:"baseYield"`
	BaseCookieSize  float64 `json:"baseCookieSize"`
	TotalDough      float64 `json:"totalDough"`
	OvenTemp        string  `json:"ovenTemp"`
	BakeTime        string  `json:"bakeTime"`
	Instructions    string  `json:"instructions" gorm:"type:text"`
	IngredientsJSON string  `json:"-" gorm:"column:ingredients;type:text"`
	// Transient field (ignored by GORM)
	Ingredients []RecipeIngredient `json:"ingredients" gorm:"-"`
}

// RecipeIngredient is one line of a recipe
type RecipeIngredient struct {
	IngredientID uint    `json:"ingredientId"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category"`
}

// TableName sets the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// BaseDoughMass is the dough mass in grams of one base batch
func (r *Recipe) BaseDoughMass() float64 {
	return r.BaseYield * r.BaseCookieSize
}

// Oven parses OvenTemp. ok is false when it is empty or unreadable.
func (r *Recipe) Oven() (OvenTemperature, bool) {
	if r.OvenTemp == "" {
		return OvenTemperature{}, false
	}
	t, err := ParseOvenTemperature(r.OvenTemp)
	return t, err == nil
}

// GetIngredients returns the deserialized ingredient lines
func (r *Recipe) GetIngredients() ([]RecipeIngredient, error) {
	if len(r.Ingredients) > 0 {
		return r.Ingredients, nil
	}
	var ingredients []RecipeIngredient
	if r.IngredientsJSON == "" {
		return ingredients, nil
	}
	if err := json.Unmarshal([]byte(r.IngredientsJSON), &ingredients); err != nil {
		return nil, err
	}
	r.Ingredients = ingredients
	return ingredients, nil
}

// SetIngredients serializes the ingredient lines for storage
func (r *Recipe) SetIngredients(ingredients []RecipeIngredient) error {
	if ingredients == nil {
		ingredients = []RecipeIngredient{}
	}
	data, err := json.Marshal(ingredients)
	if err != nil {
		return err
	}
	r.IngredientsJSON = string(data)
	r.Ingredients = ingredients
	return nil
}

// BeforeSave keeps the stored column in sync with Ingredients
func (r *Recipe) BeforeSave() error {
	return r.SetIngredients(r.Ingredients)
}

// AfterFind loads Ingredients from the stored column
func (r *Recipe) AfterFind() error {
	r.Ingredients = nil
	_, err := r.GetIngredients()
	return err
}

// ValidateRecipe validates a recipe before it is stored
func ValidateRecipe(recipe *Recipe) error {
	if recipe.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	if recipe.BaseYield <= 0 {
		return fmt.Errorf("recipe base yield must be greater than 0")
	}
	if recipe.BaseCookieSize <= 0 {
		return fmt.Errorf("recipe base cookie size must be greater than 0")
	}
	if recipe.OvenTemp != "" {
		if _, err := ParseOvenTemperature(recipe.OvenTemp); err != nil {
			return err
		}
	}
	for i, ri := range recipe.Ingredients {
		if ri.IngredientID == 0 {
			return fmt.Errorf("recipe ingredient %d has no ingredient reference", i)
		}
		if ri.Amount < 0 {
			return fmt.Errorf("recipe ingredient %d amount must not be negative", i)
		}
	}
	return nil
}
