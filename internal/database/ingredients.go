package database

import (
	"context"
	"fmt"

	"bakehouse/internal/costing"
	"bakehouse/internal/models"
	"bakehouse/internal/realtime"

	"github.com/jinzhu/gorm"
)

// ListIngredients returns every ingredient ordered by ID
func (s *Store) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.Ingredient
	if err := s.db.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return out, nil
}

// GetIngredient loads one ingredient
func (s *Store) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ing models.Ingredient
	if err := find(s.db, &ing, id, "ingredient"); err != nil {
		return nil, err
	}
	return &ing, nil
}

// SaveIngredient creates the ingredient when it has no ID, otherwise
// replaces the stored record.
func (s *Store) SaveIngredient(ctx context.Context, ing *models.Ingredient) error {
	action := realtime.ActionUpdated
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if ing.ID == 0 {
			action = realtime.ActionCreated
			return classify(tx.Create(ing).Error)
		}
		if err := exists(tx, &models.Ingredient{}, ing.ID, "ingredient"); err != nil {
			return err
		}
		return classify(tx.Save(ing).Error)
	})
	if err != nil {
		return fmt.Errorf("save ingredient: %w", err)
	}
	s.publish(CollectionIngredients, action, ing.ID)
	return nil
}

// DeleteIngredient removes an ingredient. Recipes that still reference it
// keep the dangling line; scaling skips it.
func (s *Store) DeleteIngredient(ctx context.Context, id uint) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Ingredient{}, id, "ingredient"); err != nil {
			return err
		}
		return tx.Delete(&models.Ingredient{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}
	s.publish(CollectionIngredients, realtime.ActionDeleted, id)
	return nil
}

// Restock adds a purchase to an ingredient's stock and recomputes its
// weighted-average cost inside one transaction. A zero event time is
// replaced with the store clock.
func (s *Store) Restock(ctx context.Context, id uint, ev costing.RestockEvent) (*models.Ingredient, error) {
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}

	var updated models.Ingredient
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var ing models.Ingredient
		if err := find(forUpdate(tx), &ing, id, "ingredient"); err != nil {
			return err
		}
		updated = costing.ApplyRestockEvent(ing, ev)
		return tx.Model(&updated).Updates(map[string]interface{}{
			"current_stock":  updated.CurrentStock,
			"stock_value":    updated.StockValue,
			"cost_per_unit":  updated.CostPerUnit,
			"last_restocked": updated.LastRestocked,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("restock ingredient %d: %w", id, err)
	}

	s.log.Info("ingredient restocked",
		"ingredient", updated.Name,
		"amount", ev.Amount,
		"unit", ev.Unit,
		"price", ev.PurchasePrice,
		"cost_per_unit", updated.CostPerUnit,
	)
	s.publish(CollectionIngredients, realtime.ActionUpdated, id)
	return &updated, nil
}

// forUpdate locks selected rows on dialects that support it
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialect().GetName() == "postgres" {
		return tx.Set("gorm:query_option", "FOR UPDATE")
	}
	return tx
}

// writeStock persists stock and value for each ingredient
func writeStock(tx *gorm.DB, ingredients []models.Ingredient) error {
	for i := range ingredients {
		ing := ingredients[i]
		err := tx.Model(&ing).Updates(map[string]interface{}{
			"current_stock": ing.CurrentStock,
			"stock_value":   ing.StockValue,
		}).Error
		if err != nil {
			return fmt.Errorf("update stock of ingredient %d: %w", ing.ID, err)
		}
	}
	return nil
}

func (s *Store) catalog(tx *gorm.DB) (costing.Catalog, error) {
	var ings []models.Ingredient
	if err := forUpdate(tx).Find(&ings).Error; err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	return costing.NewCatalog(ings), nil
}
