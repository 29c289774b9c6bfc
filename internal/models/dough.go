package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// DoughBall is a batch of pre-portioned dough held ahead of orders.
// Quantity is the number of dough balls still available.
type DoughBall struct {
	gorm.Model
	BatchNumber string    `json:"batchNumber" gorm:"index"` // e.g. "MM-001"
	RecipeID    uint      `json:"recipeId" gorm:"index"`
	RecipeName  string    `json:"recipeName"`
	CookieSize  float64   `json:"cookieSize"` // grams per cookie
	Quantity    int       `json:"quantity"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Notes       string    `json:"notes,omitempty"`
}

// TableName sets the table name for DoughBall
func (DoughBall) TableName() string {
	return "dough_balls"
}

// Expired reports whether the batch is past its freshness date
func (d *DoughBall) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}
