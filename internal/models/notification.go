package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// NotificationType classifies a back-office alert
type NotificationType string

const (
	NotificationLowStock           NotificationType = "low_stock"
	NotificationOutOfStock         NotificationType = "out_of_stock"
	NotificationProductUnavailable NotificationType = "product_unavailable"
	NotificationRestockReminder    NotificationType = "restock_reminder"
	NotificationInfo               NotificationType = "info"
)

// Severity of a notification
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Notification is an alert shown on the admin dashboard
type Notification struct {
	gorm.Model
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Timestamp    time.Time        `json:"timestamp"`
	IsRead       bool             `json:"isRead"`
	IngredientID *uint            `json:"ingredientId,omitempty"`
	ProductID    *uint            `json:"productId,omitempty"`
	Severity     Severity         `json:"severity"`
}

// TableName sets the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
