package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nathanyu/limitbook/internal/domain"
	"github.com/nathanyu/limitbook/internal/gateway"
	"github.com/nathanyu/limitbook/internal/marketdata"
	"github.com/nathanyu/limitbook/internal/matching"
)

// Handler holds the HTTP handler dependencies.
type Handler struct {
	gateway   *gateway.Gateway
	engine    *matching.Engine
	publisher *marketdata.Publisher
}

// NewHandler creates a new Handler.
func NewHandler(gw *gateway.Gateway, engine *matching.Engine, publisher *marketdata.Publisher) *Handler {
	return &Handler{
		gateway:   gw,
		engine:    engine,
		publisher: publisher,
	}
}

// RegisterRoutes sets up the Gin routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", h.PlaceOrder)
		v1.DELETE("/orders/:clientOrderId", h.CancelOrder)
		v1.PATCH("/orders/:clientOrderId", h.ModifyOrder)
		v1.GET("/marketdata/snapshot", h.GetSnapshot)
		v1.GET("/marketdata/depth", h.GetDepth)
		v1.GET("/marketdata/candles", h.GetCandles)
		v1.GET("/stream", h.publisher.StreamHandler)
	}
}

// Health returns a health check response.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "limitbook",
	})
}

// PlaceOrderRequest is the request body for placing an order.
type PlaceOrderRequest struct {
	TraderID    string  `json:"traderId" binding:"required"`
	Side        string  `json:"side" binding:"required"`
	OrderType   string  `json:"orderType" binding:"required"`
	TimeInForce string  `json:"timeInForce" binding:"required"`
	STPMode     string  `json:"stpMode"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity" binding:"required,gt=0"`
}

// PlaceOrder handles POST /v1/orders.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	side := domain.Side(req.Side)
	if side != domain.SideBuy && side != domain.SideSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be BUY or SELL"})
		return
	}

	orderType := domain.OrderType(req.OrderType)
	if orderType != domain.OrderTypeLimit && orderType != domain.OrderTypeMarket {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderType must be LIMIT or MARKET"})
		return
	}

	stpMode := domain.STPMode(req.STPMode)
	if stpMode == "" {
		stpMode = domain.STPAllow
	}

	clientOrderID, result, err := h.gateway.PlaceOrder(gateway.PlaceOrderRequest{
		TraderID:    req.TraderID,
		Side:        side,
		OrderType:   orderType,
		TimeInForce: domain.TimeInForce(req.TimeInForce),
		STPMode:     stpMode,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"clientOrderId": clientOrderID,
		"result":        result,
	})
}

// CancelOrder handles DELETE /v1/orders/:clientOrderId.
func (h *Handler) CancelOrder(c *gin.Context) {
	clientOrderID := c.Param("clientOrderId")

	cancelled, err := h.gateway.CancelOrder(clientOrderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

// ModifyOrderRequest is the request body for modifying an order.
type ModifyOrderRequest struct {
	Price    float64 `json:"price" binding:"required,gt=0"`
	Quantity int64   `json:"quantity" binding:"required,gt=0"`
}

// ModifyOrder handles PATCH /v1/orders/:clientOrderId.
func (h *Handler) ModifyOrder(c *gin.Context) {
	clientOrderID := c.Param("clientOrderId")

	var req ModifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.gateway.ModifyOrder(clientOrderID, req.Price, req.Quantity)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSnapshot handles GET /v1/marketdata/snapshot.
func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// GetDepth handles GET /v1/marketdata/depth.
func (h *Handler) GetDepth(c *gin.Context) {
	depth := 10
	if raw := c.Query("depth"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			depth = parsed
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"bids": h.engine.Depth(domain.SideBuy, depth),
		"asks": h.engine.Depth(domain.SideSell, depth),
	})
}

// GetCandles handles GET /v1/marketdata/candles.
func (h *Handler) GetCandles(c *gin.Context) {
	count := 100
	if raw := c.Query("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			count = parsed
		}
	}

	candles := h.publisher.GetCandles(count)
	if candles == nil {
		candles = []*marketdata.Candlestick{}
	}
	c.JSON(http.StatusOK, candles)
}
