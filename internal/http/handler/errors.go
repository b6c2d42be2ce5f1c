package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcnpstock/schweb-email-login/internal/domain"
)

// respondServiceError maps the domain error taxonomy onto HTTP responses.
// Upstream detail (status and body) is logged and echoed where safe; secrets
// and refresh tokens never appear in a response.
func respondServiceError(c *gin.Context, err error) {
	logger := zap.L()

	var (
		validationErr *domain.ValidationError
		actionErr     *domain.InvalidActionError
		quantityErr   *domain.InvalidQuantityError
		exchangeErr   *domain.TokenExchangeError
		refreshErr    *domain.TokenRefreshError
		lookupErr     *domain.AccountLookupError
		orderErr      *domain.OrderSubmissionError
		networkErr    *domain.NetworkError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": validationErr.Error()})
	case errors.As(err, &actionErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_action", "error_description": actionErr.Error()})
	case errors.As(err, &quantityErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_quantity", "error_description": quantityErr.Error()})
	case errors.Is(err, domain.ErrMissingCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "No authorization code received."})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state", "error_description": "Login state is invalid or expired. Restart the login flow."})
	case errors.Is(err, domain.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": "not_configured", "error_description": "Brokerage credentials are not configured."})
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrNoRefreshToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated", "error_description": "Not logged in to the brokerage."})
	case errors.As(err, &exchangeErr):
		logger.Error("token exchange failed", zap.Int("upstream_status", exchangeErr.Status), zap.String("upstream_body", exchangeErr.Body))
		c.JSON(http.StatusBadGateway, gin.H{"error": "token_exchange_failed", "error_description": "Brokerage rejected the token exchange."})
	case errors.As(err, &refreshErr):
		logger.Error("token refresh failed", zap.Int("upstream_status", refreshErr.Status), zap.String("upstream_body", refreshErr.Body))
		c.JSON(http.StatusBadGateway, gin.H{"error": "token_refresh_failed", "error_description": "Brokerage rejected the token refresh."})
	case errors.As(err, &lookupErr):
		logger.Error("account lookup failed", zap.Int("upstream_status", lookupErr.Status), zap.String("upstream_body", lookupErr.Body))
		c.JSON(http.StatusBadGateway, gin.H{"error": "account_lookup_failed", "error_description": "Brokerage rejected the account lookup."})
	case errors.Is(err, domain.ErrNoAccounts), errors.Is(err, domain.ErrInvalidAccount):
		logger.Error("account lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "account_lookup_failed", "error_description": err.Error()})
	case errors.As(err, &orderErr):
		logger.Error("order rejected", zap.Int("upstream_status", orderErr.Status), zap.String("upstream_body", orderErr.Body))
		c.JSON(http.StatusBadGateway, gin.H{"error": "order_failed", "error_description": "Brokerage rejected the order.", "details": orderErr.Body})
	case errors.As(err, &networkErr):
		logger.Error("brokerage unreachable", zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "brokerage_unreachable", "error_description": "Brokerage request timed out or failed to connect."})
	default:
		logger.Error("service failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
	}
}
