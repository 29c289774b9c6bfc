package models

import (
	"fmt"
	"time"

	"bakehouse/internal/measure"

	"github.com/jinzhu/gorm"
)

// Ingredient is a purchasable raw material together with its inventory and
// cost tracking fields. Stock amounts are always in the storage Unit.
type Ingredient struct {
	gorm.Model
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	PackageSize  float64 `json:"packageSize"`
	PackagePrice float64 `json:"packagePrice"`
	Category     string  `json:"category"`

	// Inventory tracking
	CurrentStock  float64    `json:"currentStock"`
	MinThreshold  float64    `json:"minThreshold"`
	ReorderAmount float64    `json:"reorderAmount"`
	LastRestocked *time.Time `json:"lastRestocked,omitempty"`

	// Cost tracking
	StockValue  float64 `json:"stockValue"`
	CostPerUnit float64 `json:"costPerUnit"` // weighted average, 0 until first valued
}

// TableName sets the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// StorageUnit returns the unit stock and recipe amounts are kept in
func (i Ingredient) StorageUnit() measure.Unit {
	return measure.Unit(i.Unit)
}

// PackageUnitCost is the list price of one storage unit
func (i Ingredient) PackageUnitCost() float64 {
	return i.PackagePrice / i.PackageSize
}

// EffectiveCostPerUnit prefers the weighted-average cost and falls back to
// the package price when no stock has been valued yet.
func (i Ingredient) EffectiveCostPerUnit() float64 {
	if i.CostPerUnit != 0 {
		return i.CostPerUnit
	}
	return i.PackageUnitCost()
}

// IngredientCategory tags ingredients for grouping in the back office
type IngredientCategory string

const (
	IngredientCategoryDry       IngredientCategory = "Dry"
	IngredientCategoryWet       IngredientCategory = "Wet"
	IngredientCategoryDairy     IngredientCategory = "Dairy"
	IngredientCategoryMixIn     IngredientCategory = "Mix-in"
	IngredientCategoryPackaging IngredientCategory = "Packaging"
)

// ValidateIngredient validates an ingredient before it is stored
func ValidateIngredient(ing *Ingredient) error {
	if ing.Name == "" {
		return fmt.Errorf("ingredient name is required")
	}
	if _, ok := measure.ParseUnit(ing.Unit); !ok {
		return fmt.Errorf("ingredient unit %q is not a known unit", ing.Unit)
	}
	if ing.PackageSize <= 0 {
		return fmt.Errorf("ingredient package size must be greater than 0")
	}
	if ing.PackagePrice < 0 {
		return fmt.Errorf("ingredient package price must not be negative")
	}
	return nil
}

// StockStatus summarizes an ingredient's stock level against its threshold
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLow        StockStatus = "low"
	StockOutOfStock StockStatus = "out_of_stock"
)

// StockStatus reports where current stock sits against MinThreshold
func (i Ingredient) StockStatus() StockStatus {
	switch {
	case i.CurrentStock <= 0:
		return StockOutOfStock
	case i.CurrentStock <= i.MinThreshold:
		return StockLow
	default:
		return StockInStock
	}
}
