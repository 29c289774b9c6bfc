package database

import (
	"context"
	"fmt"
	"time"

	"bakehouse/internal/costing"
	"bakehouse/internal/models"
	"bakehouse/internal/production"
	"bakehouse/internal/realtime"

	"github.com/jinzhu/gorm"
)

// DoughBatch is the request to portion a new batch of dough balls
type DoughBatch struct {
	RecipeID   uint
	Quantity   int
	CookieSize float64
	ExpiryDays int
	Notes      string
}

// ListDoughBalls returns every dough batch, soonest to expire first
func (s *Store) ListDoughBalls(ctx context.Context) ([]models.DoughBall, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.DoughBall
	if err := s.db.Order("expires_at").Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list dough balls: %w", err)
	}
	return out, nil
}

// CreateDoughBatch consumes the ingredients for req.Quantity cookies of the
// recipe and records the batch under the recipe's next batch number.
func (s *Store) CreateDoughBatch(ctx context.Context, req DoughBatch) (*models.DoughBall, []models.Ingredient, error) {
	if req.Quantity <= 0 {
		return nil, nil, fmt.Errorf("create dough batch: quantity must be greater than 0")
	}

	var (
		batch models.DoughBall
		used  []models.Ingredient
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := find(tx, &recipe, req.RecipeID, "recipe"); err != nil {
			return err
		}
		if recipe.BaseYield <= 0 {
			return fmt.Errorf("recipe %d has no base yield", recipe.ID)
		}

		stock, err := s.catalog(tx)
		if err != nil {
			return err
		}
		for _, id := range costing.ConsumeRecipe(stock, recipe, float64(req.Quantity)/recipe.BaseYield) {
			used = append(used, stock[id])
		}
		if err := writeStock(tx, used); err != nil {
			return err
		}

		var existing []models.DoughBall
		if err := tx.Unscoped().Where("recipe_id = ?", recipe.ID).Find(&existing).Error; err != nil {
			return fmt.Errorf("load dough batches: %w", err)
		}

		name := recipe.DisplayName
		if name == "" {
			name = recipe.Name
		}
		cookieSize := req.CookieSize
		if cookieSize <= 0 {
			cookieSize = recipe.BaseCookieSize
		}
		now := s.now().UTC()
		batch = models.DoughBall{
			BatchNumber: production.NextBatchNumber(production.BatchPrefix(name), recipe.ID, existing),
			RecipeID:    recipe.ID,
			RecipeName:  name,
			CookieSize:  cookieSize,
			Quantity:    req.Quantity,
			ExpiresAt:   now.Add(time.Duration(req.ExpiryDays) * 24 * time.Hour),
			Notes:       req.Notes,
		}
		batch.CreatedAt = now
		return tx.Create(&batch).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create dough batch: %w", err)
	}

	s.log.Info("dough batch created",
		"batch", batch.BatchNumber,
		"recipe", batch.RecipeName,
		"quantity", batch.Quantity,
		"expires_at", batch.ExpiresAt,
	)
	s.publish(CollectionDoughBalls, realtime.ActionCreated, batch.ID)
	for _, ing := range used {
		s.publish(CollectionIngredients, realtime.ActionUpdated, ing.ID)
	}
	return &batch, used, nil
}

// UseDoughBalls takes quantity balls from a batch, deleting it once empty
func (s *Store) UseDoughBalls(ctx context.Context, id uint, quantity int) (*models.DoughBall, error) {
	var (
		batch   models.DoughBall
		deleted bool
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := find(forUpdate(tx), &batch, id, "dough batch"); err != nil {
			return err
		}
		batch.Quantity -= quantity
		if batch.Quantity <= 0 {
			deleted = true
			return tx.Delete(&models.DoughBall{}, id).Error
		}
		return tx.Model(&batch).Update("quantity", batch.Quantity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("use dough balls: %w", err)
	}
	if deleted {
		s.publish(CollectionDoughBalls, realtime.ActionDeleted, id)
		return nil, nil
	}
	s.publish(CollectionDoughBalls, realtime.ActionUpdated, id)
	return &batch, nil
}

// DeleteDoughBall removes a dough batch
func (s *Store) DeleteDoughBall(ctx context.Context, id uint) error {
	return s.remove(ctx, &models.DoughBall{}, id, "dough batch", CollectionDoughBalls)
}

// DeductProduction takes the ingredients for multiplier base batches of a
// recipe out of stock, for baking done outside the order flow.
func (s *Store) DeductProduction(ctx context.Context, recipeID uint, multiplier float64) ([]models.Ingredient, error) {
	var used []models.Ingredient
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := find(tx, &recipe, recipeID, "recipe"); err != nil {
			return err
		}
		stock, err := s.catalog(tx)
		if err != nil {
			return err
		}
		for _, id := range costing.ConsumeRecipe(stock, recipe, multiplier) {
			used = append(used, stock[id])
		}
		return writeStock(tx, used)
	})
	if err != nil {
		return nil, fmt.Errorf("deduct production of recipe %d: %w", recipeID, err)
	}
	for _, ing := range used {
		s.publish(CollectionIngredients, realtime.ActionUpdated, ing.ID)
	}
	return used, nil
}
