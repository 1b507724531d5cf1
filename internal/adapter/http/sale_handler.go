package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type SaleHandler struct {
	create     *usecase.CreateSale
	update     *usecase.UpdateSale
	cancelSale *usecase.CancelSale
	cancelItem *usecase.CancelItem
	query      usecase.SaleStore
	cache      usecase.SaleCache
}

func NewSaleHandler(create *usecase.CreateSale, update *usecase.UpdateSale, cancelSale *usecase.CancelSale, cancelItem *usecase.CancelItem, query usecase.SaleStore, cache usecase.SaleCache) *SaleHandler {
	return &SaleHandler{
		create:     create,
		update:     update,
		cancelSale: cancelSale,
		cancelItem: cancelItem,
		query:      query,
		cache:      cache,
	}
}

type saleLineReq struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createSaleReq struct {
	CustomerID   string        `json:"customerId" binding:"required"`
	CustomerName string        `json:"customerName" binding:"required"`
	Branch       string        `json:"branch" binding:"required"`
	Items        []saleLineReq `json:"items" binding:"required"`
}

func toLineInputs(lines []saleLineReq) []usecase.SaleLineInput {
	out := make([]usecase.SaleLineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, usecase.SaleLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req createSaleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := reqCtx(c, 5*time.Second)
	defer cancel()

	sale, err := h.create.Execute(ctx, usecase.CreateSaleInput{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Branch:       req.Branch,
		Items:        toLineInputs(req.Items),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usecase.SnapshotSale(sale))
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	sale, err := h.query.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, usecase.SnapshotSale(sale))
}

// GetSaleStatus answers from the redis cache when it can.
func (h *SaleHandler) GetSaleStatus(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	id := c.Param("id")
	if h.cache != nil {
		if status, ok, err := h.cache.GetStatus(ctx, id); err == nil && ok {
			c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
			return
		}
	}
	sale, err := h.query.GetByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.cache != nil {
		_ = h.cache.SetStatus(ctx, sale.ID, string(sale.Status))
	}
	c.JSON(http.StatusOK, gin.H{"id": sale.ID, "status": string(sale.Status)})
}

func (h *SaleHandler) UpdateSale(c *gin.Context) {
	var req struct {
		Items []saleLineReq `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ctx, cancel := reqCtx(c, 5*time.Second)
	defer cancel()

	sale, err := h.update.Execute(ctx, c.Param("id"), toLineInputs(req.Items))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, usecase.SnapshotSale(sale))
}

func (h *SaleHandler) CancelSale(c *gin.Context) {
	ctx, cancel := reqCtx(c, 5*time.Second)
	defer cancel()

	sale, err := h.cancelSale.Execute(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, usecase.SnapshotSale(sale))
}

func (h *SaleHandler) CancelItem(c *gin.Context) {
	ctx, cancel := reqCtx(c, 5*time.Second)
	defer cancel()

	sale, err := h.cancelItem.Execute(ctx, c.Param("id"), c.Param("productId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, usecase.SnapshotSale(sale))
}
