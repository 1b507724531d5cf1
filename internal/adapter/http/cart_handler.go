package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type CartHandler struct {
	carts    *usecase.CartService
	checkout *usecase.Checkout
}

func NewCartHandler(carts *usecase.CartService, checkout *usecase.Checkout) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout}
}

type createCartReq struct {
	UserID   string `json:"userId" binding:"required"`
	UserName string `json:"userName" binding:"required"`
}

type cartItemReq struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type cartItemResp struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

type cartResp struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	UserName   string         `json:"userName"`
	Status     string         `json:"status"`
	Items      []cartItemResp `json:"items"`
	TotalPrice string         `json:"totalPrice"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func toCartResp(c *domain.Cart) cartResp {
	items := make([]cartItemResp, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemResp{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice.String(),
			Quantity:    it.Quantity,
			Discount:    it.Discount.String(),
			Total:       it.Total.String(),
		})
	}
	return cartResp{
		ID:         c.ID,
		UserID:     c.UserID,
		UserName:   c.UserName,
		Status:     string(c.Status),
		Items:      items,
		TotalPrice: c.TotalPrice.String(),
		CreatedAt:  c.CreatedAt,
	}
}

func (h *CartHandler) CreateCart(c *gin.Context) {
	var req createCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.CreateCart(ctx, req.UserID, req.UserName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartResp(cart))
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResp(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.AddItem(ctx, c.Param("id"), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResp(cart))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.UpdateItem(ctx, c.Param("id"), c.Param("productId"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResp(cart))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.RemoveItem(ctx, c.Param("id"), c.Param("productId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResp(cart))
}

func (h *CartHandler) CancelCart(c *gin.Context) {
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	cart, err := h.carts.CancelCart(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResp(cart))
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	ctx, cancel := reqCtx(c, 3*time.Second)
	defer cancel()

	if err := h.carts.DeleteCart(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Checkout converts the cart into a sale. X-Idempotency-Key makes retried
// requests return the sale created the first time.
func (h *CartHandler) Checkout(c *gin.Context) {
	idemKey := c.GetHeader("X-Idempotency-Key")

	ctx, cancel := reqCtx(c, 5*time.Second)
	defer cancel()

	sale, err := h.checkout.Execute(ctx, c.Param("id"), idemKey)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usecase.SnapshotSale(sale))
}

func reqCtx(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}
