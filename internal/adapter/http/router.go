package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/halls510/developerstore-sales-api-sub001/internal/adapter/http/middleware"
	"github.com/halls510/developerstore-sales-api-sub001/internal/logging"
)

// HealthProbe reports readiness of a downstream collaborator.
type HealthProbe func() error

func NewRouter(carts *CartHandler, sales *SaleHandler, products *ProductHandler, th *TokenHandler, authz *middleware.Authz, fulfillment HealthProbe) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		resp := gin.H{"ok": true}
		if fulfillment != nil {
			if err := fulfillment(); err != nil {
				resp["ok"] = false
				resp["fulfillment"] = err.Error()
				c.JSON(503, resp)
				return
			}
			resp["fulfillment"] = "serving"
		}
		c.JSON(200, resp)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		v1.GET("/products", authz.Require("products.read"), products.ListProducts)
		v1.GET("/products/:id", authz.Require("products.read"), products.GetProduct)

		v1.POST("/carts", authz.Require("carts.write"), carts.CreateCart)
		v1.GET("/carts/:id", authz.Require("carts.read"), carts.GetCart)
		v1.DELETE("/carts/:id", authz.Require("carts.write"), carts.DeleteCart)
		v1.POST("/carts/:id/items", authz.Require("carts.write"), carts.AddItem)
		v1.PUT("/carts/:id/items/:productId", authz.Require("carts.write"), carts.UpdateItem)
		v1.DELETE("/carts/:id/items/:productId", authz.Require("carts.write"), carts.RemoveItem)
		v1.POST("/carts/:id/cancel", authz.Require("carts.write"), carts.CancelCart)
		v1.POST("/carts/:id/checkout", authz.Require("sales.write"), carts.Checkout)

		v1.POST("/sales", authz.Require("sales.write"), sales.CreateSale)
		v1.GET("/sales/:id", authz.Require("sales.read"), sales.GetSale)
		v1.GET("/sales/:id/status", authz.Require("sales.read"), sales.GetSaleStatus)
		v1.PUT("/sales/:id", authz.Require("sales.write"), sales.UpdateSale)
		v1.POST("/sales/:id/cancel", authz.Require("sales.write"), sales.CancelSale)
		v1.POST("/sales/:id/items/:productId/cancel", authz.Require("sales.write"), sales.CancelItem)
	}

	return r
}
