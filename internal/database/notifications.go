package database

import (
	"context"
	"fmt"

	"bakehouse/internal/models"
	"bakehouse/internal/production"
	"bakehouse/internal/realtime"

	"github.com/jinzhu/gorm"
)

// ListNotifications returns notifications newest first
func (s *Store) ListNotifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := s.db.Order("timestamp desc").Order("id desc")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// CreateNotification stores n, stamping it with the store clock when it
// has no timestamp.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now().UTC()
	}
	n.ID = 0
	if err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(n).Error
	}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	s.publish(CollectionNotifications, realtime.ActionCreated, n.ID)
	return nil
}

// MarkNotificationRead flags one notification as read
func (s *Store) MarkNotificationRead(ctx context.Context, id uint) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Notification{}, id, "notification"); err != nil {
			return err
		}
		return tx.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
	})
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	s.publish(CollectionNotifications, realtime.ActionUpdated, id)
	return nil
}

// MarkAllNotificationsRead flags every unread notification as read and
// returns how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var n int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Notification{}).Where("is_read = ?", false).Update("is_read", true)
		n = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	if n > 0 {
		s.publishAll(CollectionNotifications, realtime.ActionUpdated)
	}
	return n, nil
}

// DeleteNotification removes one notification
func (s *Store) DeleteNotification(ctx context.Context, id uint) error {
	return s.remove(ctx, &models.Notification{}, id, "notification", CollectionNotifications)
}

// ClearNotifications removes every notification
func (s *Store) ClearNotifications(ctx context.Context) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Delete(&models.Notification{}).Error
	})
	if err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	s.publishAll(CollectionNotifications, realtime.ActionDeleted)
	return nil
}

// CheckInventory raises and stores an alert for every ingredient that is
// out or low and every active product that can no longer be made.
func (s *Store) CheckInventory(ctx context.Context) ([]models.Notification, error) {
	ingredients, err := s.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := s.RecipeBook(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.ListProducts(ctx, false)
	if err != nil {
		return nil, err
	}

	alerts := production.CheckInventory(ingredients, recipes, products, s.now().UTC())
	err = s.transaction(ctx, func(tx *gorm.DB) error {
		for i := range alerts {
			if err := tx.Create(&alerts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store inventory alerts: %w", err)
	}

	if len(alerts) > 0 {
		s.log.Warn("inventory alerts raised", "count", len(alerts))
	}
	for _, a := range alerts {
		s.publish(CollectionNotifications, realtime.ActionCreated, a.ID)
	}
	return alerts, nil
}
