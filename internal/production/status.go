// Package production plans kitchen work for open orders: which dough balls
// to pull, which raw ingredients to mix, and what to deduct from stock when
// an order starts.
package production

import (
	"fmt"

	"bakehouse/internal/models"
)

// Statuses lists the order statuses in workflow order
var Statuses = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusProcessed,
	models.OrderStatusInProgress,
	models.OrderStatusDone,
	models.OrderStatusCancelled,
}

// ParseStatus validates an order status string
func ParseStatus(s string) (models.OrderStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// ShouldDeduct reports whether moving an order into status consumes stock
func ShouldDeduct(status models.OrderStatus) bool {
	return status == models.OrderStatusInProgress || status == models.OrderStatusDone
}

// IsOpen reports whether an order still needs production
func IsOpen(o models.Order) bool {
	if o.IngredientsDeducted {
		return false
	}
	return o.Status != models.OrderStatusDone && o.Status != models.OrderStatusCancelled
}
