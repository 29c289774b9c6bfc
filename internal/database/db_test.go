package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bakehouse/internal/config"
	"bakehouse/internal/costing"
	"bakehouse/internal/logger"
	"bakehouse/internal/measure"
	"bakehouse/internal/models"
	"bakehouse/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(collection string, action realtime.Action, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, collection+":"+string(action)+":"+key)
}

func (r *recorder) seen(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestStore(t *testing.T, seed bool) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	cfg := config.DatabaseConfig{Dialect: "sqlite3", URL: ":memory:", Seed: seed}
	s, err := Open(cfg, logger.Nop(), WithPublisher(rec), WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, rec
}

// bakery stores one recipe needing 100 g flour and 2 eggs per 10 cookies
func bakery(t *testing.T, s *Store) (flour, eggs models.Ingredient, recipe models.Recipe) {
	t.Helper()
	ctx := context.Background()
	flour = models.Ingredient{Name: "Flour", Unit: "g", PackageSize: 1000, PackagePrice: 2, CurrentStock: 1000, StockValue: 2, CostPerUnit: 0.002, MinThreshold: 200}
	eggs = models.Ingredient{Name: "Eggs", Unit: "each", PackageSize: 12, PackagePrice: 3.6, CurrentStock: 12, StockValue: 3.6, CostPerUnit: 0.3, MinThreshold: 4}
	require.NoError(t, s.SaveIngredient(ctx, &flour))
	require.NoError(t, s.SaveIngredient(ctx, &eggs))
	recipe = models.Recipe{
		Name: "test", DisplayName: "Test Cookie", BaseYield: 10, BaseCookieSize: 50,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 100},
			{IngredientID: eggs.ID, Amount: 2},
		},
	}
	require.NoError(t, s.SaveRecipe(ctx, &recipe))
	return flour, eggs, recipe
}

func TestOpen_SeedsDefaultsOnce(t *testing.T) {
	s, rec := newTestStore(t, true)
	ctx := context.Background()

	ings, err := s.ListIngredients(ctx)
	require.NoError(t, err)
	assert.Len(t, ings, len(defaultIngredients()))

	recipes, err := s.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Len(t, recipes[0].Ingredients, len(chocolateChip))

	products, err := s.ListProducts(ctx, true)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].RecipeID)
	assert.Equal(t, recipes[0].ID, *products[0].RecipeID)

	tiers, err := s.ListDiscountTiers(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 6)
	assert.Equal(t, 48, tiers[0].Threshold)
	assert.Equal(t, 1, tiers[5].Threshold)

	require.NoError(t, s.Seed(ctx))
	ings, err = s.ListIngredients(ctx)
	require.NoError(t, err)
	assert.Len(t, ings, len(defaultIngredients()))
	assert.True(t, rec.seen("ingredients:created:"))
}

func TestReset_RestoresCatalog(t *testing.T) {
	s, _ := newTestStore(t, true)
	ctx := context.Background()

	ings, err := s.ListIngredients(ctx)
	require.NoError(t, err)
	require.NoError(t, s.DeleteIngredient(ctx, ings[0].ID))
	extra := models.Ingredient{Name: "Cardamom", Unit: "g", PackageSize: 50, PackagePrice: 6}
	require.NoError(t, s.SaveIngredient(ctx, &extra))

	require.NoError(t, s.Reset(ctx))
	ings, err = s.ListIngredients(ctx)
	require.NoError(t, err)
	assert.Len(t, ings, len(defaultIngredients()))
	for _, ing := range ings {
		assert.NotEqual(t, "Cardamom", ing.Name)
	}
}

func TestIngredientCRUD(t *testing.T) {
	s, rec := newTestStore(t, false)
	ctx := context.Background()

	ing := models.Ingredient{Name: "Butter", Unit: "g", PackageSize: 454, PackagePrice: 4.99}
	require.NoError(t, s.SaveIngredient(ctx, &ing))
	require.NotZero(t, ing.ID)
	assert.True(t, rec.seen("ingredients:created:1"))

	ing.MinThreshold = 200
	require.NoError(t, s.SaveIngredient(ctx, &ing))
	got, err := s.GetIngredient(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.MinThreshold)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, s.DeleteIngredient(ctx, ing.ID))
	_, err = s.GetIngredient(ctx, ing.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, rec.seen("ingredients:deleted:1"))
}

func TestSave_MissingRecordIsNotFound(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()

	ing := models.Ingredient{Name: "Ghost", Unit: "g", PackageSize: 1}
	ing.ID = 42
	assert.True(t, errors.Is(s.SaveIngredient(ctx, &ing), ErrNotFound))

	p := models.Product{Name: "Ghost", Price: 1}
	p.ID = 7
	assert.True(t, errors.Is(s.SaveProduct(ctx, &p), ErrNotFound))
	assert.True(t, errors.Is(s.DeleteRecipe(ctx, 3), ErrNotFound))
}

func TestRestock_WeightedAverage(t *testing.T) {
	s, rec := newTestStore(t, false)
	ctx := context.Background()

	ing := models.Ingredient{Name: "Sugar", Unit: "g", PackageSize: 1000, PackagePrice: 2, CurrentStock: 1000, StockValue: 2, CostPerUnit: 0.002}
	require.NoError(t, s.SaveIngredient(ctx, &ing))

	got, err := s.Restock(ctx, ing.ID, costing.RestockEvent{Amount: 1, Unit: measure.Kilogram, PurchasePrice: 4})
	require.NoError(t, err)
	assert.InDelta(t, 2000, got.CurrentStock, 1e-9)
	assert.InDelta(t, 6, got.StockValue, 1e-9)
	assert.InDelta(t, 0.003, got.CostPerUnit, 1e-12)
	require.NotNil(t, got.LastRestocked)
	assert.True(t, got.LastRestocked.Equal(testNow))

	stored, err := s.GetIngredient(ctx, ing.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.003, stored.CostPerUnit, 1e-12)
	assert.InDelta(t, 2000, stored.CurrentStock, 1e-9)
	assert.True(t, rec.seen("ingredients:updated:1"))

	_, err = s.Restock(ctx, 99, costing.RestockEvent{Amount: 1, Unit: measure.Gram})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecipeIngredientsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, false)
	_, _, recipe := bakery(t, s)

	got, err := s.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, 100.0, got.Ingredients[0].Amount)
	assert.Equal(t, recipe.Ingredients[1].IngredientID, got.Ingredients[1].IngredientID)
}

func TestCreateOrder_AssignsNumbers(t *testing.T) {
	s, rec := newTestStore(t, false)
	ctx := context.Background()

	first := models.Order{Customer: models.Customer{Name: "Ada", Email: "ada@example.com"}, Items: []models.OrderItem{{ProductID: 1, Quantity: 6, PriceEach: 3}}}
	second := models.Order{Items: []models.OrderItem{{ProductID: 1, Quantity: 1, PriceEach: 3}}}
	require.NoError(t, s.CreateOrder(ctx, &first))
	require.NoError(t, s.CreateOrder(ctx, &second))

	assert.Equal(t, "MD-1001", first.OrderNumber)
	assert.Equal(t, "MD-1002", second.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, first.Status)
	assert.Len(t, first.PublicID, 36)
	assert.NotEqual(t, first.PublicID, second.PublicID)

	got, err := s.GetOrderByPublicID(ctx, first.PublicID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 6, got.Items[0].Quantity)
	assert.Equal(t, "ada@example.com", got.Customer.Email)

	_, err = s.GetOrderByPublicID(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, rec.seen("orders:created:1"))

	// deleted order numbers are not reused
	require.NoError(t, s.DeleteOrder(ctx, second.ID))
	third := models.Order{}
	require.NoError(t, s.CreateOrder(ctx, &third))
	assert.Equal(t, "MD-1003", third.OrderNumber)
}

func TestUpdateOrderStatus_DeductsIngredientsOnce(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	flour, eggs, recipe := bakery(t, s)

	order := models.Order{Items: []models.OrderItem{
		{ProductID: 1, Quantity: 5, PriceEach: 3, RecipeID: &recipe.ID},
		{ProductID: 1, Quantity: 10, PriceEach: 3, RecipeID: &recipe.ID},
	}}
	require.NoError(t, s.CreateOrder(ctx, &order))

	updated, d, err := s.UpdateOrderStatus(ctx, order.ID, models.OrderStatusInProgress, true)
	require.NoError(t, err)
	assert.True(t, updated.IngredientsDeducted)
	assert.Equal(t, models.OrderStatusInProgress, updated.Status)
	require.Len(t, d.Ingredients, 2)

	// 15 cookies is 1.5 base batches across both lines
	gotFlour, err := s.GetIngredient(ctx, flour.ID)
	require.NoError(t, err)
	assert.InDelta(t, 850, gotFlour.CurrentStock, 1e-9)
	assert.InDelta(t, 1.7, gotFlour.StockValue, 1e-9)
	gotEggs, err := s.GetIngredient(ctx, eggs.ID)
	require.NoError(t, err)
	assert.InDelta(t, 9, gotEggs.CurrentStock, 1e-9)

	_, d, err = s.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDone, true)
	require.NoError(t, err)
	assert.True(t, d.Empty())
	gotFlour, err = s.GetIngredient(ctx, flour.ID)
	require.NoError(t, err)
	assert.InDelta(t, 850, gotFlour.CurrentStock, 1e-9)
}

func TestUpdateOrderStatus_WithoutDeduction(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	flour, _, recipe := bakery(t, s)

	order := models.Order{Items: []models.OrderItem{{Quantity: 10, RecipeID: &recipe.ID}}}
	require.NoError(t, s.CreateOrder(ctx, &order))

	updated, d, err := s.UpdateOrderStatus(ctx, order.ID, models.OrderStatusInProgress, false)
	require.NoError(t, err)
	assert.False(t, updated.IngredientsDeducted)
	assert.True(t, d.Empty())

	got, err := s.GetIngredient(ctx, flour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.CurrentStock)

	_, _, err = s.UpdateOrderStatus(ctx, 404, models.OrderStatusDone, true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateOrderStatus_UsesDoughBalls(t *testing.T) {
	s, rec := newTestStore(t, false)
	ctx := context.Background()
	flour, _, recipe := bakery(t, s)

	batch, used, err := s.CreateDoughBatch(ctx, DoughBatch{RecipeID: recipe.ID, Quantity: 10, CookieSize: 50, ExpiryDays: 3})
	require.NoError(t, err)
	require.Len(t, used, 2)
	got, err := s.GetIngredient(ctx, flour.ID)
	require.NoError(t, err)
	assert.InDelta(t, 900, got.CurrentStock, 1e-9)

	order := models.Order{Items: []models.OrderItem{{Quantity: 10, RecipeID: &recipe.ID}}}
	require.NoError(t, s.CreateOrder(ctx, &order))
	_, d, err := s.UpdateOrderStatus(ctx, order.ID, models.OrderStatusInProgress, true)
	require.NoError(t, err)
	assert.Empty(t, d.Ingredients)
	assert.Equal(t, []uint{batch.ID}, d.DoughDeletes)

	dough, err := s.ListDoughBalls(ctx)
	require.NoError(t, err)
	assert.Empty(t, dough)
	got, err = s.GetIngredient(ctx, flour.ID)
	require.NoError(t, err)
	assert.InDelta(t, 900, got.CurrentStock, 1e-9)
	assert.True(t, rec.seen("doughBalls:deleted:1"))
}

func TestCreateDoughBatch_NumbersAndExpiry(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	_, _, recipe := bakery(t, s)

	first, _, err := s.CreateDoughBatch(ctx, DoughBatch{RecipeID: recipe.ID, Quantity: 5, ExpiryDays: 3, Notes: "chilled"})
	require.NoError(t, err)
	second, _, err := s.CreateDoughBatch(ctx, DoughBatch{RecipeID: recipe.ID, Quantity: 5, ExpiryDays: 1})
	require.NoError(t, err)

	assert.Equal(t, "TC-001", first.BatchNumber)
	assert.Equal(t, "TC-002", second.BatchNumber)
	assert.Equal(t, "Test Cookie", first.RecipeName)
	assert.Equal(t, 50.0, first.CookieSize)
	assert.True(t, first.ExpiresAt.Equal(testNow.Add(72*time.Hour)))

	dough, err := s.ListDoughBalls(ctx)
	require.NoError(t, err)
	require.Len(t, dough, 2)
	assert.Equal(t, second.ID, dough[0].ID)

	_, _, err = s.CreateDoughBatch(ctx, DoughBatch{RecipeID: 999, Quantity: 5})
	assert.True(t, errors.Is(err, ErrNotFound))
	_, _, err = s.CreateDoughBatch(ctx, DoughBatch{RecipeID: recipe.ID})
	assert.Error(t, err)
}

func TestUseDoughBalls(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	_, _, recipe := bakery(t, s)

	batch, _, err := s.CreateDoughBatch(ctx, DoughBatch{RecipeID: recipe.ID, Quantity: 8, ExpiryDays: 3})
	require.NoError(t, err)

	left, err := s.UseDoughBalls(ctx, batch.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, left)
	assert.Equal(t, 5, left.Quantity)

	left, err = s.UseDoughBalls(ctx, batch.ID, 5)
	require.NoError(t, err)
	assert.Nil(t, left)

	_, err = s.UseDoughBalls(ctx, batch.ID, 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeductProduction(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	flour, eggs, recipe := bakery(t, s)

	used, err := s.DeductProduction(ctx, recipe.ID, 2)
	require.NoError(t, err)
	require.Len(t, used, 2)

	got, err := s.GetIngredient(ctx, flour.ID)
	require.NoError(t, err)
	assert.InDelta(t, 800, got.CurrentStock, 1e-9)
	got, err = s.GetIngredient(ctx, eggs.ID)
	require.NoError(t, err)
	assert.InDelta(t, 8, got.CurrentStock, 1e-9)
	assert.InDelta(t, 2.4, got.StockValue, 1e-9)
}

func TestProductionPlan(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	flour, _, recipe := bakery(t, s)

	_, _, err := s.CreateDoughBatch(ctx, DoughBatch{RecipeID: recipe.ID, Quantity: 4, ExpiryDays: 3})
	require.NoError(t, err)
	order := models.Order{Items: []models.OrderItem{{Quantity: 14, RecipeID: &recipe.ID}}}
	require.NoError(t, s.CreateOrder(ctx, &order))

	plan, err := s.ProductionPlan(ctx)
	require.NoError(t, err)
	require.Len(t, plan.DoughBallsUsed, 1)
	assert.Equal(t, 4, plan.DoughBallsUsed[0].QuantityUsed)
	require.Len(t, plan.DoughBallsNeeded, 1)
	assert.Equal(t, 10, plan.DoughBallsNeeded[0].Quantity)
	require.Len(t, plan.Needed, 2)
	assert.Equal(t, flour.ID, plan.Needed[0].Ingredient.ID)
	assert.InDelta(t, 100, plan.Needed[0].Amount, 1e-9)
}

func TestOrderCosts(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	_, _, recipe := bakery(t, s)

	order := models.Order{Subtotal: 20, Items: []models.OrderItem{{Quantity: 10, PriceEach: 2, RecipeID: &recipe.ID}}}
	require.NoError(t, s.CreateOrder(ctx, &order))

	costs, err := s.OrderCosts(ctx, order.ID)
	require.NoError(t, err)
	// 100 g flour at 0.002 plus 2 eggs at 0.30
	assert.InDelta(t, 0.8, costs.TotalIngredientCost, 1e-9)
	assert.InDelta(t, 20, costs.TotalRevenue, 1e-9)

	_, err = s.OrderCosts(ctx, 77)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNotifications(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx := context.Background()
	flour, _, recipe := bakery(t, s)

	flour.CurrentStock = 50
	require.NoError(t, s.SaveIngredient(ctx, &flour))
	product := models.Product{Name: "Test Cookie", Price: 3, RecipeID: &recipe.ID, IsActive: true}
	require.NoError(t, s.SaveProduct(ctx, &product))

	alerts, err := s.CheckInventory(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, models.NotificationLowStock, alerts[0].Type)
	assert.Equal(t, models.NotificationProductUnavailable, alerts[1].Type)

	manual := models.Notification{Type: models.NotificationInfo, Title: "Note", Message: "hello", Severity: models.SeverityInfo}
	require.NoError(t, s.CreateNotification(ctx, &manual))
	assert.True(t, manual.Timestamp.Equal(testNow))

	unread, err := s.ListNotifications(ctx, true)
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	require.NoError(t, s.MarkNotificationRead(ctx, manual.ID))
	unread, err = s.ListNotifications(ctx, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	n, err := s.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.DeleteNotification(ctx, manual.ID))
	assert.True(t, errors.Is(s.MarkNotificationRead(ctx, manual.ID), ErrNotFound))

	require.NoError(t, s.ClearNotifications(ctx))
	all, err := s.ListNotifications(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransaction_CancelledContext(t *testing.T) {
	s, _ := newTestStore(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ing := models.Ingredient{Name: "Salt", Unit: "g", PackageSize: 1}
	assert.True(t, errors.Is(s.SaveIngredient(ctx, &ing), context.Canceled))
	_, err := s.ListIngredients(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPing(t *testing.T) {
	s, _ := newTestStore(t, false)
	assert.NoError(t, s.Ping(context.Background()))
}
