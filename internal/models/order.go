package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Order is a customer order placed through the storefront
type Order struct {
	gorm.Model
	PublicID    string      `json:"publicId" gorm:"unique_index"`
	OrderNumber string      `json:"orderNumber" gorm:"unique_index"`
	Status      OrderStatus `json:"status"`

	Customer Customer `json:"customer" gorm:"embedded;embedded_prefix:customer_"`
	Delivery Delivery `json:"delivery" gorm:"embedded;embedded_prefix:delivery_"`

	Items    []OrderItem `json:"items" gorm:"foreignkey:OrderID"`
	Subtotal float64     `json:"subtotal"`
	Discount float64     `json:"discount"`
	Tax      float64     `json:"tax"`
	Tip      float64     `json:"tip"`
	Total    float64     `json:"total"`

	// Production tracking
	UseDoughBalls       bool `json:"useDoughBalls"`
	IngredientsDeducted bool `json:"ingredientsDeducted"`
}

// Customer holds the contact details of whoever placed the order
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Delivery holds the delivery address and fee
type Delivery struct {
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Instructions string  `json:"instructions,omitempty"`
	Fee          float64 `json:"fee"`
}

// OrderItem represents an item in an order
type OrderItem struct {
	gorm.Model
	OrderID     uint    `json:"orderId"`
	ProductID   uint    `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	PriceEach   float64 `json:"priceEach"`
	RecipeID    *uint   `json:"recipeId,omitempty"`
}

// TableName sets the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName sets the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// Placed returns when the order was created
func (o *Order) Placed() time.Time {
	return o.CreatedAt
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessed  OrderStatus = "processed"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancelled"
)
