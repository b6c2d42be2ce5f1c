package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcnpstock/schweb-email-login/internal/service/auth"
)

const redactedSecret = "***"

// ConfigHandler manages the operator-facing brokerage credential endpoints.
type ConfigHandler struct {
	svc    auth.OAuthService
	logger *zap.Logger
}

func NewConfigHandler(svc auth.OAuthService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{svc: svc, logger: logger}
}

type saveConfigRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectUri"`
}

type configResponse struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectUri"`
}

// Save stores the brokerage app credential, replacing any previous one.
func (h *ConfigHandler) Save(c *gin.Context) {
	var req saveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Request body must be JSON."})
		return
	}

	saved, err := h.svc.SaveCredential(c.Request.Context(), auth.SaveCredentialInput{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		RedirectURI:  req.RedirectURI,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, configResponse{
		ClientID:     saved.ClientID,
		ClientSecret: redactedSecret,
		RedirectURI:  saved.RedirectURI,
	})
}

// Get returns the stored credential with the secret redacted. The secret
// value never leaves the server.
func (h *ConfigHandler) Get(c *gin.Context) {
	cred, err := h.svc.Credential(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if cred == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_configured", "error_description": "No brokerage credential stored."})
		return
	}

	resp := configResponse{
		ClientID:    cred.ClientID,
		RedirectURI: cred.RedirectURI,
	}
	if cred.ClientSecret != "" {
		resp.ClientSecret = redactedSecret
	}
	c.JSON(http.StatusOK, resp)
}

// Status reports whether a usable credential is stored.
func (h *ConfigHandler) Status(c *gin.Context) {
	cred, err := h.svc.Credential(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	configured := cred != nil && cred.Complete()
	c.JSON(http.StatusOK, gin.H{
		"configured":     configured,
		"hasCredentials": cred != nil,
	})
}
