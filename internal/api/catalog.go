package api

import (
	"fmt"
	"net/http"

	"bakehouse/internal/costing"
	"bakehouse/internal/measure"
	"bakehouse/internal/models"

	"github.com/gin-gonic/gin"
)

// Ingredient handlers

func (b *BakeryAPI) ListIngredients(c *gin.Context) {
	ings, err := b.DB.ListIngredients(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	type row struct {
		models.Ingredient
		Status models.StockStatus `json:"status"`
	}
	out := make([]row, len(ings))
	for i, ing := range ings {
		out[i] = row{Ingredient: ing, Status: ing.StockStatus()}
	}
	c.JSON(http.StatusOK, out)
}

func (b *BakeryAPI) GetIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ing, err := b.DB.GetIngredient(c.Request.Context(), id)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (b *BakeryAPI) CreateIngredient(c *gin.Context) {
	var ing models.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		badRequest(c, err)
		return
	}
	ing.ID = 0
	b.saveIngredient(c, &ing, http.StatusCreated)
}

func (b *BakeryAPI) UpdateIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var ing models.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		badRequest(c, err)
		return
	}
	ing.ID = id
	b.saveIngredient(c, &ing, http.StatusOK)
}

func (b *BakeryAPI) saveIngredient(c *gin.Context, ing *models.Ingredient, status int) {
	if err := models.ValidateIngredient(ing); err != nil {
		badRequest(c, err)
		return
	}
	if err := b.DB.SaveIngredient(c.Request.Context(), ing); err != nil {
		b.fail(c, err)
		return
	}
	b.Monitor.SetStockValue(ing.Name, ing.StockValue)
	c.JSON(status, ing)
}

func (b *BakeryAPI) DeleteIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.DeleteIngredient(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted"})
}

type restockRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Unit          string  `json:"unit"`
	PurchasePrice float64 `json:"purchasePrice" binding:"gte=0"`
	Density       float64 `json:"density" binding:"gte=0"`
}

// RestockIngredient adds a purchase to stock. The unit defaults to the
// ingredient's storage unit.
func (b *BakeryAPI) RestockIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	unit := measure.Unit(req.Unit)
	if req.Unit == "" {
		ing, err := b.DB.GetIngredient(ctx, id)
		if err != nil {
			b.fail(c, err)
			return
		}
		unit = ing.StorageUnit()
	} else if _, known := measure.ParseUnit(req.Unit); !known {
		badRequest(c, fmt.Errorf("unknown unit %q", req.Unit))
		return
	}

	ing, err := b.DB.Restock(ctx, id, costing.RestockEvent{
		Amount:        req.Amount,
		Unit:          unit,
		PurchasePrice: req.PurchasePrice,
		Density:       req.Density,
	})
	if err != nil {
		b.fail(c, err)
		return
	}
	b.Monitor.RecordRestock(ing.Name, ing.StockValue)
	c.JSON(http.StatusOK, ing)
}

// Recipe handlers

func (b *BakeryAPI) ListRecipes(c *gin.Context) {
	recipes, err := b.DB.ListRecipes(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (b *BakeryAPI) GetRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := b.DB.GetRecipe(c.Request.Context(), id)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (b *BakeryAPI) CreateRecipe(c *gin.Context) {
	var r models.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, err)
		return
	}
	r.ID = 0
	b.saveRecipe(c, &r, http.StatusCreated)
}

func (b *BakeryAPI) UpdateRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var r models.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, err)
		return
	}
	r.ID = id
	b.saveRecipe(c, &r, http.StatusOK)
}

func (b *BakeryAPI) saveRecipe(c *gin.Context, r *models.Recipe, status int) {
	if err := models.ValidateRecipe(r); err != nil {
		badRequest(c, err)
		return
	}
	if err := b.DB.SaveRecipe(c.Request.Context(), r); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(status, r)
}

func (b *BakeryAPI) DeleteRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.DeleteRecipe(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}

type scaleRequest struct {
	TargetCount      float64 `json:"targetCount" binding:"required,gt=0"`
	TargetUnitWeight float64 `json:"targetUnitWeight" binding:"gte=0"`
	SalePrice        float64 `json:"salePrice" binding:"gte=0"`
	Quantity         int     `json:"quantity" binding:"gte=0"`
}

// ScaleRecipe scales a recipe to a target count and cookie weight and, when
// a sale price is given, adds the profit analysis. The cookie weight
// defaults to the recipe's base size and the sale quantity to the count.
func (b *BakeryAPI) ScaleRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req scaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	recipe, err := b.DB.GetRecipe(ctx, id)
	if err != nil {
		b.fail(c, err)
		return
	}
	catalog, err := b.DB.Catalog(ctx)
	if err != nil {
		b.fail(c, err)
		return
	}
	weight := req.TargetUnitWeight
	if weight == 0 {
		weight = recipe.BaseCookieSize
	}

	scaling := costing.ScaleRecipe(*recipe, catalog, req.TargetCount, weight)
	b.Monitor.RecordScaling(recipe.Name)

	resp := gin.H{"recipe": recipe, "scaling": scaling}
	if oven, ok := recipe.Oven(); ok {
		resp["oven"] = gin.H{
			"fahrenheit": oven.Fahrenheit(),
			"celsius":    oven.Celsius(),
			"display":    oven.String(),
		}
	}
	if req.SalePrice > 0 {
		tiers, err := b.DB.ListDiscountTiers(ctx)
		if err != nil {
			b.fail(c, err)
			return
		}
		quantity := req.Quantity
		if quantity == 0 {
			quantity = int(req.TargetCount)
		}
		resp["profit"] = costing.ProfitMetrics(scaling, req.SalePrice, quantity, tiers)
		resp["tierMargins"] = costing.TierMargins(scaling.CostPerUnit, req.SalePrice, tiers)
	}
	c.JSON(http.StatusOK, resp)
}

// Product handlers

func (b *BakeryAPI) ListProducts(c *gin.Context) {
	products, err := b.DB.ListProducts(c.Request.Context(), false)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (b *BakeryAPI) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := b.DB.GetProduct(c.Request.Context(), id)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (b *BakeryAPI) CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	p.ID = 0
	b.saveProduct(c, &p, http.StatusCreated)
}

func (b *BakeryAPI) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	p.ID = id
	b.saveProduct(c, &p, http.StatusOK)
}

func (b *BakeryAPI) saveProduct(c *gin.Context, p *models.Product, status int) {
	if err := models.ValidateProduct(p); err != nil {
		badRequest(c, err)
		return
	}
	if err := b.DB.SaveProduct(c.Request.Context(), p); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(status, p)
}

func (b *BakeryAPI) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.DeleteProduct(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// Discount tier handlers

func (b *BakeryAPI) ListDiscountTiers(c *gin.Context) {
	tiers, err := b.DB.ListDiscountTiers(c.Request.Context())
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func (b *BakeryAPI) CreateDiscountTier(c *gin.Context) {
	var t models.DiscountTier
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	t.ID = 0
	b.saveDiscountTier(c, &t, http.StatusCreated)
}

func (b *BakeryAPI) UpdateDiscountTier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var t models.DiscountTier
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, err)
		return
	}
	t.ID = id
	b.saveDiscountTier(c, &t, http.StatusOK)
}

func (b *BakeryAPI) saveDiscountTier(c *gin.Context, t *models.DiscountTier, status int) {
	if err := models.ValidateDiscountTier(t); err != nil {
		badRequest(c, err)
		return
	}
	if err := b.DB.SaveDiscountTier(c.Request.Context(), t); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(status, t)
}

func (b *BakeryAPI) DeleteDiscountTier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := b.DB.DeleteDiscountTier(c.Request.Context(), id); err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Discount tier deleted"})
}
