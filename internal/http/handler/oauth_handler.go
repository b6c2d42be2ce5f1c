package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcnpstock/schweb-email-login/internal/config"
	"github.com/rcnpstock/schweb-email-login/internal/service/auth"
)

// OAuthHandler serves the brokerage login flow and token lifecycle endpoints.
type OAuthHandler struct {
	svc       auth.OAuthService
	refresher *auth.Refresher
	cfg       config.Config
	logger    *zap.Logger
}

func NewOAuthHandler(svc auth.OAuthService, refresher *auth.Refresher, cfg config.Config, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{svc: svc, refresher: refresher, cfg: cfg, logger: logger}
}

// Login redirects the browser to the brokerage authorization page.
func (h *OAuthHandler) Login(c *gin.Context) {
	authURL, err := h.svc.AuthorizationURL(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Callback receives the authorization code, exchanges it for tokens and
// redirects to the configured success page.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	token, err := h.svc.ExchangeCode(c.Request.Context(), code, state)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.Info("login completed", zap.Int64("expires_in", token.ExpiresIn))
	c.Redirect(http.StatusFound, h.cfg.SuccessRedirect)
}

// Status reports whether a token is stored and the outcome of the most
// recent refresh attempt. A store failure degrades to loggedIn:false so the
// poll endpoint does not flap with the database.
func (h *OAuthHandler) Status(c *gin.Context) {
	loggedIn, err := h.svc.IsLoggedIn(c.Request.Context())
	if err != nil {
		h.logger.Error("login status check failed", zap.Error(err))
		loggedIn = false
	}

	resp := gin.H{"loggedIn": loggedIn}
	if outcome, ok := h.refresher.LastOutcome(); ok {
		resp["lastRefresh"] = outcome
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh forces an immediate token refresh.
func (h *OAuthHandler) Refresh(c *gin.Context) {
	outcome, err := h.refresher.RefreshNow(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": true, "at": outcome.At})
}

// Logout discards all stored tokens.
func (h *OAuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}
