package api

import (
	"fmt"
	"net/http"
	"strconv"

	"bakehouse/internal/measure"
	"bakehouse/internal/models"
	"bakehouse/internal/pricing"

	"github.com/gin-gonic/gin"
)

// ListActiveProducts lists the products on sale
func (b *BakeryAPI) ListActiveProducts(c *gin.Context) {
	products, err := b.DB.ListProducts(c.Request.Context(), true)
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetPricing previews the batch prices of a product. With ?quantity=N the
// price for exactly N cookies is included.
func (b *BakeryAPI) GetPricing(c *gin.Context) {
	id, ok := idParam(c, "productID")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	product, err := b.DB.GetProduct(ctx, id)
	if err != nil {
		b.fail(c, err)
		return
	}
	tiers, err := b.DB.ListDiscountTiers(ctx)
	if err != nil {
		b.fail(c, err)
		return
	}

	resp := gin.H{
		"product": product,
		"batches": pricing.BatchPricing(product.Price, tiers),
		"tiers":   pricing.ActiveTiers(tiers),
	}
	if q := c.Query("quantity"); q != "" {
		quantity, err := strconv.Atoi(q)
		if err != nil || quantity < 1 {
			badRequest(c, fmt.Errorf("quantity must be a positive integer"))
			return
		}
		price := pricing.CalculatePrice(product.Price, quantity, tiers)
		_, label := pricing.DiscountFor(quantity, tiers)
		resp["quantity"] = quantity
		resp["price"] = price
		resp["discountLabel"] = label
		resp["formattedTotal"] = pricing.FormatCurrency(price.DiscountedTotal)
	}
	c.JSON(http.StatusOK, resp)
}

type checkoutItem struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gte=1"`
}

type checkoutRequest struct {
	Customer      models.Customer `json:"customer"`
	Delivery      models.Delivery `json:"delivery"`
	Items         []checkoutItem  `json:"items" binding:"required,min=1,dive"`
	Tip           float64         `json:"tip" binding:"gte=0"`
	UseDoughBalls bool            `json:"useDoughBalls"`
}

// Checkout prices a cart and places it as a pending order
func (b *BakeryAPI) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Customer.Name == "" {
		badRequest(c, fmt.Errorf("customer name is required"))
		return
	}
	ctx := c.Request.Context()

	tiers, err := b.DB.ListDiscountTiers(ctx)
	if err != nil {
		b.fail(c, err)
		return
	}

	order := models.Order{
		Customer:      req.Customer,
		Delivery:      req.Delivery,
		UseDoughBalls: req.UseDoughBalls,
	}
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := b.DB.GetProduct(ctx, item.ProductID)
		if err != nil {
			b.fail(c, err)
			return
		}
		if !product.IsActive {
			badRequest(c, fmt.Errorf("product %s is not available", product.Name))
			return
		}
		lines = append(lines, pricing.Line{ProductID: product.ID, Quantity: item.Quantity, BasePrice: product.Price})
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			PriceEach:   product.Price,
			RecipeID:    product.RecipeID,
		})
	}

	totals := pricing.Checkout(lines, tiers, req.Tip)
	order.Subtotal = pricing.RoundCents(totals.Subtotal)
	order.Discount = pricing.RoundCents(totals.Discount)
	order.Tax = pricing.RoundCents(totals.Tax)
	order.Tip = pricing.RoundCents(totals.Tip)
	order.Delivery.Fee = totals.Shipping
	order.Total = pricing.RoundCents(totals.Total)

	if err := b.DB.CreateOrder(ctx, &order); err != nil {
		b.fail(c, err)
		return
	}
	b.Monitor.RecordStatusChange(string(order.Status))

	c.JSON(http.StatusCreated, gin.H{
		"order":  order,
		"totals": totals,
		"formatted": gin.H{
			"subtotal": pricing.FormatCurrency(totals.Subtotal),
			"discount": pricing.FormatCurrency(totals.Discount),
			"shipping": pricing.FormatCurrency(totals.Shipping),
			"tax":      pricing.FormatCurrency(totals.Tax),
			"tip":      pricing.FormatCurrency(totals.Tip),
			"total":    pricing.FormatCurrency(totals.Total),
		},
	})
}

// TrackOrder returns an order by the public reference given at checkout
func (b *BakeryAPI) TrackOrder(c *gin.Context) {
	order, err := b.DB.GetOrderByPublicID(c.Request.Context(), c.Param("publicID"))
	if err != nil {
		b.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
		"items":       order.Items,
		"total":       order.Total,
		"placedAt":    order.Placed(),
	})
}

// ListUnits returns the unit table and selector groups
func (b *BakeryAPI) ListUnits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"units":   measure.Units(),
		"display": measure.DisplayUnits(),
		"groups":  measure.OptionGroups(),
	})
}

type convertRequest struct {
	Amount  float64 `json:"amount"`
	From    string  `json:"from" binding:"required"`
	To      string  `json:"to" binding:"required"`
	Density float64 `json:"density" binding:"gte=0"`
}

// Convert converts an amount between units, bridging weight and volume
// with the given density (water when omitted)
func (b *BakeryAPI) Convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	from, ok := measure.ParseUnit(req.From)
	if !ok {
		badRequest(c, fmt.Errorf("unknown unit %q", req.From))
		return
	}
	to, ok := measure.ParseUnit(req.To)
	if !ok {
		badRequest(c, fmt.Errorf("unknown unit %q", req.To))
		return
	}
	density := req.Density
	if density == 0 {
		density = measure.DefaultDensity
	}

	amount := measure.ConvertWithDensity(req.Amount, from, to, density)
	c.JSON(http.StatusOK, gin.H{
		"amount":     amount,
		"unit":       to,
		"formatted":  measure.FormatAmount(amount),
		"fraction":   measure.FormatAsFraction(amount),
		"compatible": measure.CompatibleUnits(to),
	})
}
