package costing

import (
	"math"
	"testing"
	"time"

	"bakehouse/internal/measure"
	"bakehouse/internal/models"
	"bakehouse/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingredient(id uint, name, unit string, size, price float64) models.Ingredient {
	ing := models.Ingredient{Name: name, Unit: unit, PackageSize: size, PackagePrice: price}
	ing.ID = id
	return ing
}

func fixtures() (models.Recipe, Catalog) {
	cat := NewCatalog([]models.Ingredient{
		ingredient(1, "Flour", "g", 1000, 2),    // 0.002/g
		ingredient(2, "Butter", "g", 454, 4.54), // 0.01/g
		ingredient(3, "Eggs", "each", 12, 3.6),  // 0.30 each
	})
	r := models.Recipe{
		Name:           "moonlight",
		DisplayName:    "Moonlight Morsels",
		BaseYield:      12,
		BaseCookieSize: 50,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: 1, Amount: 300, Category: "Dry"},
			{IngredientID: 2, Amount: 100, Category: "Wet"},
			{IngredientID: 3, Amount: 2, Category: "Wet"},
		},
	}
	r.ID = 1
	return r, cat
}

func TestScaleRecipe_BaseBatch(t *testing.T) {
	r, cat := fixtures()
	s := ScaleRecipe(r, cat, 12, 50)

	assert.Equal(t, measure.Ratio(1), s.ScaleFactor)
	require.Len(t, s.Ingredients, 3)
	assert.Equal(t, "Dry", s.Ingredients[0].Category)
	assert.InDelta(t, 0.002, s.Ingredients[0].UnitCost, 1e-12)
	assert.InDelta(t, 0.6, s.Ingredients[0].Cost, 1e-9)
	assert.InDelta(t, 2.2, s.TotalCost, 1e-9)
	assert.InDelta(t, 2.2/12, float64(s.CostPerUnit), 1e-9)
	assert.Equal(t, 600.0, s.TotalDough)
	assert.Empty(t, s.Skipped)
}

func TestScaleRecipe_Linearity(t *testing.T) {
	r, cat := fixtures()
	base := ScaleRecipe(r, cat, 12, 50)
	double := ScaleRecipe(r, cat, 24, 50)

	require.Len(t, double.Ingredients, len(base.Ingredients))
	for i := range base.Ingredients {
		assert.InDelta(t, 2*base.Ingredients[i].ScaledAmount, double.Ingredients[i].ScaledAmount, 1e-9)
		assert.Equal(t, base.Ingredients[i].BaseAmount, double.Ingredients[i].BaseAmount)
	}
	assert.InDelta(t, 2*base.TotalCost, double.TotalCost, 1e-9)
	assert.InDelta(t, float64(base.CostPerUnit), float64(double.CostPerUnit), 1e-12)
}

func TestScaleRecipe_ScalesByMassNotCount(t *testing.T) {
	r, cat := fixtures()
	// half as many cookies at twice the size is the same dough
	s := ScaleRecipe(r, cat, 6, 100)
	assert.Equal(t, measure.Ratio(1), s.ScaleFactor)
	assert.InDelta(t, 2.2/6, float64(s.CostPerUnit), 1e-9)
}

func TestScaleRecipe_MissingIngredientIsSkipped(t *testing.T) {
	r, cat := fixtures()
	r.Ingredients = append(r.Ingredients, models.RecipeIngredient{IngredientID: 99, Amount: 10})

	s := ScaleRecipe(r, cat, 12, 50)
	assert.Len(t, s.Ingredients, 3)
	assert.Equal(t, []uint{99}, s.Skipped)
	assert.InDelta(t, 2.2, s.TotalCost, 1e-9)
}

func TestScaleRecipe_ZeroTargetIsNotFinite(t *testing.T) {
	r, cat := fixtures()
	s := ScaleRecipe(r, cat, 0, 50)
	assert.False(t, s.CostPerUnit.Finite())
	assert.Equal(t, 0.0, s.TotalCost)
}

func TestApplyRestock_WeightedAverage(t *testing.T) {
	ing := ingredient(1, "Flour", "g", 1000, 5)
	ing.CurrentStock = 1000
	ing.StockValue = 5
	ing.CostPerUnit = 0.005

	got := ApplyRestock(ing, 500, measure.Gram, 3)
	assert.InDelta(t, 1500.0, got.CurrentStock, 1e-9)
	assert.InDelta(t, 8.0, got.StockValue, 1e-9)
	assert.InDelta(t, 8.0/1500, got.CostPerUnit, 1e-12)
	assert.Nil(t, got.LastRestocked)
	// input is a value and stays as it was
	assert.Equal(t, 1000.0, ing.CurrentStock)
}

func TestApplyRestock_ZeroStockGuard(t *testing.T) {
	ing := ingredient(1, "Sugar", "g", 1000, 2)
	got := ApplyRestock(ing, 0, measure.Gram, 0)
	assert.Equal(t, 0.0, got.CostPerUnit)
	assert.False(t, math.IsNaN(got.CostPerUnit))
}

func TestApplyRestock_CrossUnit(t *testing.T) {
	ing := ingredient(1, "Milk", "g", 1000, 2)
	got := ApplyRestock(ing, 2, measure.Cup, 4)
	assert.InDelta(t, 473.176, got.CurrentStock, 1e-9)
	assert.InDelta(t, 4.0, got.StockValue, 1e-12)
	assert.InDelta(t, 4/473.176, got.CostPerUnit, 1e-12)
}

func TestApplyRestockEvent_DensityAndTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ing := ingredient(1, "Flour", "g", 1000, 2)
	got := ApplyRestockEvent(ing, RestockEvent{Amount: 1, Unit: measure.Cup, PurchasePrice: 1, Density: 0.53, At: at})

	assert.InDelta(t, 236.588*0.53, got.CurrentStock, 1e-9)
	require.NotNil(t, got.LastRestocked)
	assert.True(t, at.Equal(*got.LastRestocked))
}

func TestApplyRestock_NegativeIsAccepted(t *testing.T) {
	ing := ingredient(1, "Flour", "g", 1000, 2)
	ing.CurrentStock = 100
	ing.StockValue = 1
	got := ApplyRestock(ing, -150, measure.Gram, -1)
	assert.Equal(t, -50.0, got.CurrentStock)
	assert.Equal(t, 0.0, got.StockValue)
	assert.Equal(t, 0.0, got.CostPerUnit)
}

func TestDeduct(t *testing.T) {
	ing := ingredient(1, "Flour", "g", 1000, 2)
	ing.CurrentStock = 100
	ing.StockValue = 1
	ing.CostPerUnit = 0.01

	got := Deduct(ing, 40)
	assert.InDelta(t, 60.0, got.CurrentStock, 1e-9)
	assert.InDelta(t, 0.6, got.StockValue, 1e-9)
	assert.Equal(t, 0.01, got.CostPerUnit)

	got = Deduct(ing, 500)
	assert.Equal(t, 0.0, got.CurrentStock)
	assert.Equal(t, 0.0, got.StockValue)
}

func TestConsumeRecipe(t *testing.T) {
	r, cat := fixtures()
	for id, ing := range cat {
		ing.CurrentStock = 1000
		cat[id] = ing
	}
	r.Ingredients = append(r.Ingredients, models.RecipeIngredient{IngredientID: 42, Amount: 1})
	stock := cat.Clone()

	touched := ConsumeRecipe(stock, r, 0.5)
	assert.Equal(t, []uint{1, 2, 3}, touched)
	assert.Equal(t, 850.0, stock[1].CurrentStock)
	assert.Equal(t, 950.0, stock[2].CurrentStock)
	assert.Equal(t, 999.0, stock[3].CurrentStock)
	assert.Equal(t, 1000.0, cat[1].CurrentStock)
	assert.Equal(t, []uint{1, 2, 3}, stock.IDs())
}

func orderFixture() models.Order {
	recipeID := uint(1)
	return models.Order{
		Subtotal: 89,
		Discount: 8.4,
		Items: []models.OrderItem{
			{ProductName: "Moonlight Morsels", Quantity: 24, PriceEach: 3.5, RecipeID: &recipeID},
			{ProductName: "Gift Box", Quantity: 1, PriceEach: 5},
		},
	}
}

func TestOrderCostBreakdown(t *testing.T) {
	r, cat := fixtures()
	butter := cat[2]
	butter.CostPerUnit = 0.012
	cat[2] = butter

	got := OrderCostBreakdown(orderFixture(), NewRecipeBook([]models.Recipe{r}), cat)
	require.Len(t, got.Items, 2)

	item := got.Items[0]
	require.Len(t, item.Ingredients, 3)
	assert.InDelta(t, 600.0, item.Ingredients[0].Amount, 1e-9)
	assert.InDelta(t, 1.2, item.Ingredients[0].Cost, 1e-9) // package price, no weighted cost yet
	assert.InDelta(t, 2.4, item.Ingredients[1].Cost, 1e-9) // weighted cost wins
	assert.InDelta(t, 4.8, item.TotalIngredientCost, 1e-9)
	assert.InDelta(t, 84.0, item.Revenue, 1e-9)
	assert.InDelta(t, 0.2, float64(item.CostPerCookie), 1e-9)
	assert.InDelta(t, 3.3, float64(item.ProfitPerCookie), 1e-9)
	assert.InDelta(t, (84-4.8)/84*100, item.ProfitMargin, 1e-9)

	noRecipe := got.Items[1]
	assert.Equal(t, 0.0, noRecipe.TotalIngredientCost)
	assert.Equal(t, measure.Ratio(5), noRecipe.ProfitPerCookie)
	assert.Equal(t, 100.0, noRecipe.ProfitMargin)

	assert.InDelta(t, 80.6, got.TotalRevenue, 1e-9)
	assert.InDelta(t, 4.8, got.TotalIngredientCost, 1e-9)
	assert.InDelta(t, 75.8, got.GrossProfit, 1e-9)
	assert.InDelta(t, 75.8/80.6*100, got.OverallMargin, 1e-9)
}

func TestOrderCostBreakdown_ZeroRevenueMargin(t *testing.T) {
	r, cat := fixtures()
	o := orderFixture()
	o.Subtotal, o.Discount = 0, 0
	o.Items[0].PriceEach = 0

	got := OrderCostBreakdown(o, NewRecipeBook([]models.Recipe{r}), cat)
	assert.Equal(t, 0.0, got.Items[0].ProfitMargin)
	assert.Equal(t, 0.0, got.OverallMargin)
}

func TestProfitMetrics(t *testing.T) {
	r, cat := fixtures()
	s := ScaleRecipe(r, cat, 12, 50)
	p := ProfitMetrics(s, 3.75, 12, pricing.DefaultTiers())

	cpc := 2.2 / 12
	profit := 3.375 - cpc
	assert.Equal(t, 0.1, p.Discount)
	assert.Equal(t, "10% off", p.DiscountLabel)
	assert.InDelta(t, 3.375, p.DiscountedPrice, 1e-9)
	assert.InDelta(t, profit, float64(p.ProfitPerCookie), 1e-9)
	assert.InDelta(t, profit/3.375*100, float64(p.ProfitMargin), 1e-9)
	assert.InDelta(t, 45.0, p.GrossRevenue, 1e-9)
	assert.InDelta(t, 40.5, p.NetRevenue, 1e-9)
	assert.InDelta(t, 4.5, p.DiscountAmount, 1e-9)
	assert.InDelta(t, profit*12, float64(p.TotalProfit), 1e-9)
	assert.Equal(t, measure.Ratio(1), p.BreakEvenQuantity)
}

func TestProfitMetrics_FreeCookieMarginIsNotFinite(t *testing.T) {
	r, cat := fixtures()
	p := ProfitMetrics(ScaleRecipe(r, cat, 12, 50), 0, 12, pricing.DefaultTiers())
	assert.False(t, p.ProfitMargin.Finite())
}

func TestTierMargins(t *testing.T) {
	rows := TierMargins(0.5, 4, pricing.DefaultTiers())
	require.Len(t, rows, 6)

	assert.Equal(t, 48, rows[0].Threshold)
	assert.Equal(t, "4 Dozen", rows[0].Label)
	assert.InDelta(t, 3.0, rows[0].SalePrice, 1e-9)
	assert.InDelta(t, 2.5, float64(rows[0].Profit), 1e-9)
	assert.InDelta(t, 2.5/3*100, float64(rows[0].Margin), 1e-9)

	assert.Equal(t, "Single", rows[5].Label)
	assert.Equal(t, 4.0, rows[5].SalePrice)
}
