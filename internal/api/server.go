// Package api exposes the bakery over HTTP with gin: a public storefront
// group and a JWT-protected back-office group.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bakehouse/internal/config"
	"bakehouse/internal/costing"
	"bakehouse/internal/database"
	"bakehouse/internal/logger"
	"bakehouse/internal/models"
	"bakehouse/internal/monitoring"
	"bakehouse/internal/production"
	"bakehouse/internal/realtime"

	"github.com/gin-gonic/gin"
)

// Database is the persistence the API needs
type Database interface {
	Ping(ctx context.Context) error
	Reset(ctx context.Context) error

	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	SaveIngredient(ctx context.Context, ing *models.Ingredient) error
	DeleteIngredient(ctx context.Context, id uint) error
	Restock(ctx context.Context, id uint, ev costing.RestockEvent) (*models.Ingredient, error)
	Catalog(ctx context.Context) (costing.Catalog, error)

	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	SaveRecipe(ctx context.Context, r *models.Recipe) error
	DeleteRecipe(ctx context.Context, id uint) error

	ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error

	ListDiscountTiers(ctx context.Context) ([]models.DiscountTier, error)
	SaveDiscountTier(ctx context.Context, t *models.DiscountTier) error
	DeleteDiscountTier(ctx context.Context, id uint) error

	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetOrderByPublicID(ctx context.Context, publicID string) (*models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus, deduct bool) (*models.Order, production.Deduction, error)
	DeleteOrder(ctx context.Context, id uint) error
	OrderCosts(ctx context.Context, id uint) (costing.OrderCosts, error)
	ProductionPlan(ctx context.Context) (production.Plan, error)

	ListDoughBalls(ctx context.Context) ([]models.DoughBall, error)
	CreateDoughBatch(ctx context.Context, req database.DoughBatch) (*models.DoughBall, []models.Ingredient, error)
	UseDoughBalls(ctx context.Context, id uint, quantity int) (*models.DoughBall, error)
	DeleteDoughBall(ctx context.Context, id uint) error
	DeductProduction(ctx context.Context, recipeID uint, multiplier float64) ([]models.Ingredient, error)

	ListNotifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id uint) error
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
	DeleteNotification(ctx context.Context, id uint) error
	ClearNotifications(ctx context.Context) error
	CheckInventory(ctx context.Context) ([]models.Notification, error)
}

// BakeryAPI holds the router and everything the handlers use
type BakeryAPI struct {
	Router  *gin.Engine
	DB      Database
	Hub     *realtime.Hub
	Monitor *monitoring.Monitor

	cfg *config.Config
	log *logger.Logger
}

// NewBakeryAPI builds the router. hub may be nil, which disables /ws.
func NewBakeryAPI(cfg *config.Config, db Database, hub *realtime.Hub, mon *monitoring.Monitor, log *logger.Logger) *BakeryAPI {
	router := gin.New()
	router.Use(gin.Recovery())

	api := &BakeryAPI{
		Router:  router,
		DB:      db,
		Hub:     hub,
		Monitor: mon,
		cfg:     cfg,
		log:     log,
	}
	router.Use(api.requestMetrics())

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (b *BakeryAPI) setupRoutes() {
	b.Router.GET("/health", b.Health)

	if b.Hub != nil {
		b.Router.GET("/ws", b.Hub.Handler)
	}
	if b.cfg.Metrics.Enabled && b.cfg.Metrics.Port == 0 {
		b.Router.GET(b.cfg.Metrics.Path, gin.WrapH(b.Monitor.Handler()))
	}

	v1 := b.Router.Group("/api/v1")
	{
		// Storefront
		v1.GET("/products", b.ListActiveProducts)
		v1.GET("/pricing/:productID", b.GetPricing)
		v1.POST("/checkout", b.Checkout)
		v1.GET("/orders/:publicID", b.TrackOrder)

		// Unit tools
		v1.GET("/units", b.ListUnits)
		v1.POST("/convert", b.Convert)
	}

	admin := v1.Group("/admin", AuthMiddleware(b.cfg.Auth.JWTSecret))
	{
		admin.GET("/ingredients", b.ListIngredients)
		admin.GET("/ingredients/:id", b.GetIngredient)
		admin.POST("/ingredients", b.CreateIngredient)
		admin.PUT("/ingredients/:id", b.UpdateIngredient)
		admin.DELETE("/ingredients/:id", b.DeleteIngredient)
		admin.POST("/ingredients/:id/restock", b.RestockIngredient)

		admin.GET("/recipes", b.ListRecipes)
		admin.GET("/recipes/:id", b.GetRecipe)
		admin.POST("/recipes", b.CreateRecipe)
		admin.PUT("/recipes/:id", b.UpdateRecipe)
		admin.DELETE("/recipes/:id", b.DeleteRecipe)
		admin.POST("/recipes/:id/scale", b.ScaleRecipe)

		admin.GET("/products", b.ListProducts)
		admin.GET("/products/:id", b.GetProduct)
		admin.POST("/products", b.CreateProduct)
		admin.PUT("/products/:id", b.UpdateProduct)
		admin.DELETE("/products/:id", b.DeleteProduct)

		admin.GET("/discount-tiers", b.ListDiscountTiers)
		admin.POST("/discount-tiers", b.CreateDiscountTier)
		admin.PUT("/discount-tiers/:id", b.UpdateDiscountTier)
		admin.DELETE("/discount-tiers/:id", b.DeleteDiscountTier)

		admin.GET("/orders", b.ListOrders)
		admin.GET("/orders/:id", b.GetOrder)
		admin.PUT("/orders/:id/status", b.UpdateOrderStatus)
		admin.GET("/orders/:id/costs", b.GetOrderCosts)
		admin.DELETE("/orders/:id", b.DeleteOrder)

		admin.GET("/production/plan", b.GetProductionPlan)
		admin.POST("/production/deduct", b.DeductProduction)

		admin.GET("/dough-balls", b.ListDoughBalls)
		admin.POST("/dough-balls", b.CreateDoughBatch)
		admin.POST("/dough-balls/:id/use", b.UseDoughBalls)
		admin.DELETE("/dough-balls/:id", b.DeleteDoughBall)

		admin.GET("/notifications", b.ListNotifications)
		admin.POST("/notifications/check", b.CheckInventory)
		admin.PUT("/notifications/:id/read", b.MarkNotificationRead)
		admin.PUT("/notifications/read-all", b.MarkAllNotificationsRead)
		admin.DELETE("/notifications/:id", b.DeleteNotification)
		admin.DELETE("/notifications", b.ClearNotifications)

		admin.GET("/stats", b.Stats)
		admin.POST("/reset", b.ResetCatalog)
	}
}

// Health reports whether the API and its database are reachable
func (b *BakeryAPI) Health(c *gin.Context) {
	if err := b.DB.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Bakehouse API is running"})
}

// Stats returns the dashboard counters and realtime client count
func (b *BakeryAPI) Stats(c *gin.Context) {
	stats := b.Monitor.Snapshot()
	if b.Hub != nil {
		stats["ws_clients"] = float64(b.Hub.Clients())
	}
	c.JSON(http.StatusOK, stats)
}

// ResetCatalog replaces ingredients, recipes, products and tiers with the
// defaults
func (b *BakeryAPI) ResetCatalog(c *gin.Context) {
	if err := b.DB.Reset(c.Request.Context()); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Catalog reset to defaults"})
}

func (b *BakeryAPI) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		b.Monitor.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), time.Since(start))
		if status >= http.StatusInternalServerError {
			b.log.Error("request failed",
				"method", c.Request.Method,
				"route", route,
				"status", status,
				"error", c.Errors.String(),
			)
		}
	}
}

// fail writes err as a JSON error with the status it maps to
func (b *BakeryAPI) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, database.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// idParam parses the named path parameter as a record ID
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
