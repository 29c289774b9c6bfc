package database

import (
	"context"
	"fmt"

	"bakehouse/internal/costing"
	"bakehouse/internal/models"
	"bakehouse/internal/realtime"

	"github.com/jinzhu/gorm"
)

// ListRecipes returns every recipe ordered by ID
func (s *Store) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.Recipe
	if err := s.db.Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return out, nil
}

// GetRecipe loads one recipe with its ingredient lines
func (s *Store) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var r models.Recipe
	if err := find(s.db, &r, id, "recipe"); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveRecipe creates or replaces a recipe
func (s *Store) SaveRecipe(ctx context.Context, r *models.Recipe) error {
	return s.save(ctx, r, &r.ID, &models.Recipe{}, "recipe", CollectionRecipes)
}

// DeleteRecipe removes a recipe
func (s *Store) DeleteRecipe(ctx context.Context, id uint) error {
	return s.remove(ctx, &models.Recipe{}, id, "recipe", CollectionRecipes)
}

// ListProducts returns products ordered by ID, optionally only active ones
func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := s.db.Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// GetProduct loads one product
func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var p models.Product
	if err := find(s.db, &p, id, "product"); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProduct creates or replaces a product
func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	return s.save(ctx, p, &p.ID, &models.Product{}, "product", CollectionProducts)
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	return s.remove(ctx, &models.Product{}, id, "product", CollectionProducts)
}

// ListDiscountTiers returns tiers by threshold, highest first
func (s *Store) ListDiscountTiers(ctx context.Context) ([]models.DiscountTier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.DiscountTier
	if err := s.db.Order("threshold desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list discount tiers: %w", err)
	}
	return out, nil
}

// SaveDiscountTier creates or replaces a discount tier
func (s *Store) SaveDiscountTier(ctx context.Context, t *models.DiscountTier) error {
	return s.save(ctx, t, &t.ID, &models.DiscountTier{}, "discount tier", CollectionDiscountTiers)
}

// DeleteDiscountTier removes a discount tier
func (s *Store) DeleteDiscountTier(ctx context.Context, id uint) error {
	return s.remove(ctx, &models.DiscountTier{}, id, "discount tier", CollectionDiscountTiers)
}

// RecipeBook loads every recipe indexed by ID
func (s *Store) RecipeBook(ctx context.Context) (costing.RecipeBook, error) {
	recipes, err := s.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return costing.NewRecipeBook(recipes), nil
}

// Catalog loads every ingredient indexed by ID
func (s *Store) Catalog(ctx context.Context) (costing.Catalog, error) {
	ings, err := s.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	return costing.NewCatalog(ings), nil
}

func (s *Store) save(ctx context.Context, value interface{}, id *uint, model interface{}, what, collection string) error {
	action := realtime.ActionUpdated
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if *id == 0 {
			action = realtime.ActionCreated
			return classify(tx.Create(value).Error)
		}
		if err := exists(tx, model, *id, what); err != nil {
			return err
		}
		return classify(tx.Save(value).Error)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", what, err)
	}
	s.publish(collection, action, *id)
	return nil
}

func (s *Store) remove(ctx context.Context, model interface{}, id uint, what, collection string) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, model, id, what); err != nil {
			return err
		}
		return tx.Delete(model, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	s.publish(collection, realtime.ActionDeleted, id)
	return nil
}
