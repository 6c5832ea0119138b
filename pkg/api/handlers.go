package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/corefin/matchbook/pkg/book"
	"github.com/corefin/matchbook/pkg/engine"
	"github.com/corefin/matchbook/pkg/engine/model"
	"github.com/corefin/matchbook/pkg/quotecache"
)

type Handler struct {
	Engine    *engine.Engine
	Quotes    *quotecache.Cache // optional
	Validator *validator.Validate
}

func NewHandler(eng *engine.Engine, quotes *quotecache.Cache) *Handler {
	return &Handler{
		Engine:    eng,
		Quotes:    quotes,
		Validator: validator.New(),
	}
}

type PlaceOrderRequest struct {
	Symbol   string  `json:"symbol" validate:"required"`
	Side     string  `json:"side" validate:"required,oneof=BUY SELL"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Quantity int64   `json:"quantity" validate:"required,gt=0"`
	Account  string  `json:"account"`
}

func formatValidationError(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			fields[e.Field()] = "failed on tag '" + e.Tag() + "'"
		}
	}
	return fields
}

// POST /api/orders
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.Validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": formatValidationError(err)})
		return
	}

	sub := &model.Submission{
		Symbol:   req.Symbol,
		Side:     model.OrderSide(req.Side),
		Price:    decimal.NewFromFloat(req.Price),
		Quantity: decimal.NewFromInt(req.Quantity),
		Account:  req.Account,
	}

	order, err := h.Engine.SubmitOrder(c.Request.Context(), sub)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, engine.ErrOrderRejected), errors.Is(err, book.ErrInvalidOrder):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, book.ErrDuplicateOrder):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	trades, err := h.Engine.Match(c.Request.Context(), req.Symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.OrderID,
		"status":   order.Status,
		"trades":   trades,
	})
}

// DELETE /api/orders/:id?symbol=ABC
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID := c.Param("id")
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter required"})
		return
	}

	err := h.Engine.CancelOrder(c.Request.Context(), symbol, orderID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, book.ErrOrderNotFound):
			status = http.StatusNotFound
		case errors.Is(err, engine.ErrInvalidOrderStatus):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": model.OrderStatusCanceled})
}

// GET /api/orders/:id?symbol=ABC
func (h *Handler) GetOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter required"})
		return
	}

	order, err := h.Engine.Order(c.Request.Context(), symbol, orderID)
	if err != nil {
		if errors.Is(err, book.ErrOrderNotFound) {
			// the order may have left the book; fall back to the journal
			if events := h.Engine.Events(orderID); len(events) > 0 {
				c.JSON(http.StatusOK, gin.H{"order_id": orderID, "events": events})
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":   order.OrderID,
		"symbol":     order.Symbol,
		"side":       order.Side,
		"price":      order.Price,
		"quantity":   order.Quantity,
		"leaves_qty": order.LeavesQuantity,
		"cum_qty":    order.CumQuantity,
		"status":     order.Status,
	})
}

// POST /api/orderbook/:symbol/match
func (h *Handler) MatchOrders(c *gin.Context) {
	symbol := c.Param("symbol")

	trades, err := h.Engine.Match(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "trades": trades})
}

// GET /api/orderbook/:symbol
func (h *Handler) GetOrderBook(c *gin.Context) {
	symbol := c.Param("symbol")

	snapshot, err := h.Engine.Snapshot(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "levels": snapshot})
}

// GET /api/orderbook/:symbol/best
func (h *Handler) GetBestPrices(c *gin.Context) {
	symbol := c.Param("symbol")
	ctx := c.Request.Context()

	out := gin.H{"symbol": symbol}
	if bid, err := h.Engine.BestBid(ctx, symbol); err == nil {
		out["best_bid"] = bid
	}
	if ask, err := h.Engine.BestAsk(ctx, symbol); err == nil {
		out["best_ask"] = ask
	}

	c.JSON(http.StatusOK, out)
}

// GET /api/quotes/:symbol
func (h *Handler) GetQuote(c *gin.Context) {
	symbol := c.Param("symbol")
	ctx := c.Request.Context()

	if h.Quotes != nil {
		if quote, err := h.Quotes.Get(ctx, symbol); err == nil {
			c.JSON(http.StatusOK, quote)
			return
		}
	}

	quote, err := h.Engine.Quote(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GET /api/trades/:symbol?limit=50
func (h *Handler) ListTrades(c *gin.Context) {
	symbol := c.Param("symbol")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	trades, err := h.Engine.RecentTrades(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "trades": trades})
}
