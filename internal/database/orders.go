package database

import (
	"context"
	"errors"
	"fmt"

	"bakehouse/internal/costing"
	"bakehouse/internal/models"
	"bakehouse/internal/production"
	"bakehouse/internal/realtime"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

const createOrderAttempts = 3

// ListOrders returns every order with its items, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.Order
	if err := s.db.Preload("Items").Order("created_at desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// GetOrder loads one order with its items
func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var o models.Order
	if err := find(s.db.Preload("Items"), &o, id, "order"); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderByPublicID loads an order by the reference given to customers
func (s *Store) GetOrderByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var o models.Order
	err := s.db.Preload("Items").Where("public_id = ?", publicID).First(&o).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("order %s: %w", publicID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", publicID, err)
	}
	return &o, nil
}

// CreateOrder stores a new pending order, assigning its order number and
// public reference. A clash with a concurrently created order is retried.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}

	var err error
	for attempt := 0; attempt < createOrderAttempts; attempt++ {
		err = s.transaction(ctx, func(tx *gorm.DB) error {
			var numbers []string
			if err := tx.Unscoped().Model(&models.Order{}).Pluck("order_number", &numbers).Error; err != nil {
				return fmt.Errorf("load order numbers: %w", err)
			}
			o.ID = 0
			o.OrderNumber = production.NextOrderNumber(numbers)
			o.PublicID = uuid.New().String()
			for i := range o.Items {
				o.Items[i].ID = 0
			}
			return classify(tx.Create(o).Error)
		})
		if !errors.Is(err, ErrConflict) {
			break
		}
		s.log.Warn("order number clash, retrying", "attempt", attempt+1)
	}
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		"order", o.OrderNumber,
		"items", len(o.Items),
		"total", o.Total,
		"customer_email", o.Customer.Email,
	)
	s.publish(CollectionOrders, realtime.ActionCreated, o.ID)
	return nil
}

// UpdateOrderStatus moves an order to status. When deduct is set and the
// status starts production, the stock the order consumes is taken in the
// same transaction and the order is marked deducted. The applied deduction
// is returned.
func (s *Store) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus, deduct bool) (*models.Order, production.Deduction, error) {
	var (
		order models.Order
		d     production.Deduction
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := find(tx.Preload("Items"), &order, id, "order"); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": status}
		if production.NeedsDeduction(order, status, deduct) {
			planned, err := s.planDeduction(tx, order)
			if err != nil {
				return err
			}
			if err := applyDeduction(tx, planned); err != nil {
				return err
			}
			d = planned
			updates["ingredients_deducted"] = true
			order.IngredientsDeducted = true
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update order %d: %w", id, err)
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, production.Deduction{}, fmt.Errorf("update order status: %w", err)
	}

	s.log.Info("order status changed",
		"order", order.OrderNumber,
		"status", status,
		"deducted", order.IngredientsDeducted,
		"ingredients", len(d.Ingredients),
		"dough_batches", len(d.DoughUpdates)+len(d.DoughDeletes),
	)
	s.publish(CollectionOrders, realtime.ActionUpdated, id)
	for _, ing := range d.Ingredients {
		s.publish(CollectionIngredients, realtime.ActionUpdated, ing.ID)
	}
	for _, b := range d.DoughUpdates {
		s.publish(CollectionDoughBalls, realtime.ActionUpdated, b.ID)
	}
	for _, bid := range d.DoughDeletes {
		s.publish(CollectionDoughBalls, realtime.ActionDeleted, bid)
	}
	return &order, d, nil
}

func (s *Store) planDeduction(tx *gorm.DB, order models.Order) (production.Deduction, error) {
	var recipes []models.Recipe
	if err := tx.Find(&recipes).Error; err != nil {
		return production.Deduction{}, fmt.Errorf("load recipes: %w", err)
	}
	stock, err := s.catalog(tx)
	if err != nil {
		return production.Deduction{}, err
	}
	var dough []models.DoughBall
	if err := tx.Find(&dough).Error; err != nil {
		return production.Deduction{}, fmt.Errorf("load dough balls: %w", err)
	}
	return production.PlanDeduction(order, costing.NewRecipeBook(recipes), stock, dough), nil
}

func applyDeduction(tx *gorm.DB, d production.Deduction) error {
	if err := writeStock(tx, d.Ingredients); err != nil {
		return err
	}
	for i := range d.DoughUpdates {
		b := d.DoughUpdates[i]
		if err := tx.Model(&b).Update("quantity", b.Quantity).Error; err != nil {
			return fmt.Errorf("update dough batch %d: %w", b.ID, err)
		}
	}
	for _, id := range d.DoughDeletes {
		if err := tx.Delete(&models.DoughBall{}, id).Error; err != nil {
			return fmt.Errorf("delete dough batch %d: %w", id, err)
		}
	}
	return nil
}

// SaveOrder replaces an existing order and its items
func (s *Store) SaveOrder(ctx context.Context, o *models.Order) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Order{}, o.ID, "order"); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("replace items of order %d: %w", o.ID, err)
		}
		for i := range o.Items {
			o.Items[i].ID = 0
		}
		return classify(tx.Save(o).Error)
	})
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	s.publish(CollectionOrders, realtime.ActionUpdated, o.ID)
	return nil
}

// DeleteOrder removes an order and its items
func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Order{}, id, "order"); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("delete items of order %d: %w", id, err)
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.publish(CollectionOrders, realtime.ActionDeleted, id)
	return nil
}

// ProductionPlan computes what the open orders need from dough and stock
func (s *Store) ProductionPlan(ctx context.Context) (production.Plan, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return production.Plan{}, err
	}
	recipes, err := s.RecipeBook(ctx)
	if err != nil {
		return production.Plan{}, err
	}
	stock, err := s.Catalog(ctx)
	if err != nil {
		return production.Plan{}, err
	}
	dough, err := s.ListDoughBalls(ctx)
	if err != nil {
		return production.Plan{}, err
	}
	return production.PlanOrderIngredients(orders, recipes, stock, dough), nil
}

// OrderCosts computes the ingredient cost and margin of one order
func (s *Store) OrderCosts(ctx context.Context, id uint) (costing.OrderCosts, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return costing.OrderCosts{}, err
	}
	recipes, err := s.RecipeBook(ctx)
	if err != nil {
		return costing.OrderCosts{}, err
	}
	stock, err := s.Catalog(ctx)
	if err != nil {
		return costing.OrderCosts{}, err
	}
	return costing.OrderCostBreakdown(*order, recipes, stock), nil
}
