package api

import (
	"github.com/gin-gonic/gin"

	"github.com/corefin/matchbook/pkg/engine"
	"github.com/corefin/matchbook/pkg/feed"
	"github.com/corefin/matchbook/pkg/quotecache"
)

func RegisterRoutes(router *gin.Engine, eng *engine.Engine, quotes *quotecache.Cache, hub *feed.Hub) {
	handler := NewHandler(eng, quotes)

	api := router.Group("/api")
	{
		api.POST("/orders", handler.PlaceOrder)
		api.DELETE("/orders/:id", handler.CancelOrder)
		api.GET("/orders/:id", handler.GetOrderStatus)

		api.POST("/orderbook/:symbol/match", handler.MatchOrders)
		api.GET("/orderbook/:symbol", handler.GetOrderBook)
		api.GET("/orderbook/:symbol/best", handler.GetBestPrices)

		api.GET("/quotes/:symbol", handler.GetQuote)
		api.GET("/trades/:symbol", handler.ListTrades)
	}

	if hub != nil {
		router.GET("/ws/trades", gin.WrapF(hub.HandleWS))
	}
}
