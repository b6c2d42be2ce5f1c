package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
	"github.com/rcnpstock/schweb-email-login/internal/service/trade"
)

// WebhookHandler receives trade requests, both the direct order endpoint and
// the TradingView alert webhook.
type WebhookHandler struct {
	orders trade.OrderService
	logger *zap.Logger
}

func NewWebhookHandler(orders trade.OrderService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{orders: orders, logger: logger}
}

type placeOrderRequest struct {
	Symbol      string `json:"symbol"`
	Quantity    int    `json:"quantity"`
	Instruction string `json:"instruction"`
}

// PlaceOrder submits a market order described directly in the request body.
func (h *WebhookHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Request body must be JSON."})
		return
	}

	result, err := h.orders.PlaceOrder(c.Request.Context(), domain.OrderIntent{
		Symbol:      req.Symbol,
		Quantity:    req.Quantity,
		Instruction: domain.Instruction(req.Instruction),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"symbol":      result.Symbol,
		"quantity":    result.Quantity,
		"instruction": result.Instruction,
		"response":    result.Response,
	})
}

// TradingView translates an alert payload into a market order and submits it.
// The response echoes the interpreted order so the alert log shows what ran.
func (h *WebhookHandler) TradingView(c *gin.Context) {
	var alert domain.Alert
	if err := c.ShouldBindJSON(&alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Alert body must be JSON."})
		return
	}

	intent, err := domain.TranslateAlert(alert)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.Info("alert received",
		zap.String("ticker", alert.Ticker),
		zap.String("action", alert.Action),
		zap.String("strategy", alert.StrategyLabel()),
	)

	result, err := h.orders.PlaceOrder(c.Request.Context(), intent)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"symbol":      result.Symbol,
		"quantity":    result.Quantity,
		"instruction": result.Instruction,
		"strategy":    alert.StrategyLabel(),
		"response":    result.Response,
	})
}
