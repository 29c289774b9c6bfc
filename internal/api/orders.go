package api

import (
	"net/http"

	"bakehouse/internal/database"
	"bakehouse/internal/models"
	"bakehouse/internal/production"

	"github.com/gin-gonic/gin"
)

// Order handlers

func (b *BakeryAPI) ListOrders(c *gin.Context) {
	orders, err := b.DB.ListOrders(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	if c.Query("open") == "true" {
		open := orders[:0]
		for _, o := range orders {
			if production.IsOpen(o) {
				open = append(open, o)
			}
		}
		orders = open
	}
	c.JSON(http.StatusOK, orders)
}

func (b *BakeryAPI) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := b.DB.GetOrder(c.Request.Context(), id)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Deduct *bool  `json:"deductIngredients"`
}

// UpdateOrderStatus moves an order through production. Ingredients are
// deducted when it starts unless deductIngredients is false.
func (b *BakeryAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := production.ParseStatus(req.Status)
	if err != nil {
		badRequest(c, err)
		return
	}
	deduct := req.Deduct == nil || *req.Deduct

	order, d, err := b.DB.UpdateOrderStatus(c.Request.Context(), id, status, deduct)
	if err != nil {
		b.fail(c, err)
		return
	}
	b.Monitor.RecordStatusChange(string(status))
	for _, ing := range d.Ingredients {
		b.Monitor.SetStockValue(ing.Name, ing.StockValue)
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "deduction": d})
}

func (b *BakeryAPI) GetOrderCosts(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	costs, err := b.DB.OrderCosts(c.Request.Context(), id)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

func (b *BakeryAPI) DeleteOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.DeleteOrder(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// Production handlers

func (b *BakeryAPI) GetProductionPlan(c *gin.Context) {
	plan, err := b.DB.ProductionPlan(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type deductRequest struct {
	RecipeID   uint    `json:"recipeId" binding:"required"`
	Multiplier float64 `json:"multiplier" binding:"required,gt=0"`
}

// DeductProduction records baking done outside the order flow
func (b *BakeryAPI) DeductProduction(c *gin.Context) {
	var req deductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	used, err := b.DB.DeductProduction(c.Request.Context(), req.RecipeID, req.Multiplier)
	if err != nil {
		b.fail(c, err)
		return
	}
	for _, ing := range used {
		b.Monitor.SetStockValue(ing.Name, ing.StockValue)
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": used})
}

// Dough ball handlers

func (b *BakeryAPI) ListDoughBalls(c *gin.Context) {
	dough, err := b.DB.ListDoughBalls(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dough)
}

type doughRequest struct {
	RecipeID   uint    `json:"recipeId" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,gte=1"`
	CookieSize float64 `json:"cookieSize" binding:"gte=0"`
	ExpiryDays *int    `json:"expiryDays"`
	Notes      string  `json:"notes"`
}

// CreateDoughBatch portions a new batch of dough balls. Expiry defaults to
// the configured number of days.
func (b *BakeryAPI) CreateDoughBatch(c *gin.Context) {
	var req doughRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	expiry := b.cfg.Production.DoughExpiryDays
	if req.ExpiryDays != nil {
		expiry = *req.ExpiryDays
	}

	batch, used, err := b.DB.CreateDoughBatch(c.Request.Context(), database.DoughBatch{
		RecipeID:   req.RecipeID,
		Quantity:   req.Quantity,
		CookieSize: req.CookieSize,
		ExpiryDays: expiry,
		Notes:      req.Notes,
	})
	if err != nil {
		b.fail(c, err)
		return
	}
	for _, ing := range used {
		b.Monitor.SetStockValue(ing.Name, ing.StockValue)
	}
	c.JSON(http.StatusCreated, gin.H{"doughBall": batch, "ingredients": used})
}

type useDoughRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

func (b *BakeryAPI) UseDoughBalls(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req useDoughRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	batch, err := b.DB.UseDoughBalls(c.Request.Context(), id, req.Quantity)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doughBall": batch, "emptied": batch == nil})
}

func (b *BakeryAPI) DeleteDoughBall(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.DeleteDoughBall(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dough batch deleted"})
}

// Notification handlers

func (b *BakeryAPI) ListNotifications(c *gin.Context) {
	notes, err := b.DB.ListNotifications(c.Request.Context(), c.Query("unread") == "true")
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CheckInventory raises stock alerts for the current inventory
func (b *BakeryAPI) CheckInventory(c *gin.Context) {
	alerts, err := b.DB.CheckInventory(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	for _, a := range alerts {
		b.Monitor.RecordNotification(string(a.Type))
	}
	if alerts == nil {
		alerts = []models.Notification{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (b *BakeryAPI) MarkNotificationRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.MarkNotificationRead(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
}

func (b *BakeryAPI) MarkAllNotificationsRead(c *gin.Context) {
	n, err := b.DB.MarkAllNotificationsRead(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (b *BakeryAPI) DeleteNotification(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.DeleteNotification(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func (b *BakeryAPI) ClearNotifications(c *gin.Context) {
	if err := b.DB.ClearNotifications(c.Request.Context()); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications cleared"})
}
