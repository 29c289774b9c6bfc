package models

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

// Product is a cookie offered in the storefront
type Product struct {
	gorm.Model
	Name        string  `json:"name"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price"`
	Flavor      string  `json:"flavor"`
	ImageURL    string  `json:"imageUrl"`
	// Link to recipe for cost calculation
	RecipeID         *uint            `json:"recipeId,omitempty"`
	IsActive         bool             `json:"isActive"`
	NutritionalFacts NutritionalFacts `json:"nutritionalFacts" gorm:"embedded;embedded_prefix:nutrition_"`
}

// NutritionalFacts is the per-cookie nutrition label
type NutritionalFacts struct {
	Calories      float64 `json:"calories"`
	Fat           float64 `json:"fat"`
	SaturatedFat  float64 `json:"saturatedFat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugars        float64 `json:"sugars"`
	Protein       float64 `json:"protein"`
	Fiber         float64 `json:"fiber"`
	Sodium        float64 `json:"sodium"`
	Allergens     string  `json:"allergens"`
}

// TableName sets the table name for Product
func (Product) TableName() string {
	return "products"
}

// DiscountTier is a volume discount applied at or above Threshold cookies
type DiscountTier struct {
	gorm.Model
	Threshold int     `json:"threshold"`
	Discount  float64 `json:"discount"` // fraction, 0.15 means 15% off
	Label     string  `json:"label"`
	IsActive  bool    `json:"isActive"`
}

// TableName sets the table name for DiscountTier
func (DiscountTier) TableName() string {
	return "discount_tiers"
}

// ValidateProduct validates a product
func ValidateProduct(p *Product) error {
	if p.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if p.Price <= 0 {
		return fmt.Errorf("product price must be greater than 0")
	}
	return nil
}

// ValidateDiscountTier validates a discount tier
func ValidateDiscountTier(t *DiscountTier) error {
	if t.Threshold < 1 {
		return fmt.Errorf("discount tier threshold must be at least 1")
	}
	if t.Discount < 0 || t.Discount >= 1 {
		return fmt.Errorf("discount tier discount must be in [0, 1)")
	}
	return nil
}
