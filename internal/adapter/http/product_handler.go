package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type ProductHandler struct {
	catalog usecase.ProductCatalog
}

func NewProductHandler(catalog usecase.ProductCatalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productResp struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]productResp, 0, len(products))
	for _, p := range products {
		out = append(out, productResp{ID: p.ID, Title: p.Title, Price: p.Price.String()})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, cancel := reqCtx(c, 2*time.Second)
	defer cancel()

	id := c.Param("id")
	products, err := h.catalog.GetByIDs(ctx, []string{id})
	if err != nil {
		writeError(c, err)
		return
	}
	if len(products) == 0 {
		writeError(c, domain.NotFoundf("product %s does not exist", id))
		return
	}
	p := products[0]
	c.JSON(http.StatusOK, productResp{ID: p.ID, Title: p.Title, Price: p.Price.String()})
}
