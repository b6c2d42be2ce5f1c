package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/rcnpstock/schweb-email-login/internal/config"
	"github.com/rcnpstock/schweb-email-login/internal/http/handler"
	httpmiddleware "github.com/rcnpstock/schweb-email-login/internal/http/middleware"
	"github.com/rcnpstock/schweb-email-login/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, oauthHandler *handler.OAuthHandler, configHandler *handler.ConfigHandler, webhookHandler *handler.WebhookHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/login", oauthHandler.Login)
	r.GET("/callback", oauthHandler.Callback)

	api := r.Group("/api")
	{
		oauth := api.Group("/oauth")
		{
			oauth.GET("/status", oauthHandler.Status)
			oauth.POST("/refresh", oauthHandler.Refresh)
			oauth.POST("/logout", oauthHandler.Logout)
		}

		api.POST("/config", configHandler.Save)
		api.GET("/config", configHandler.Get)
		api.GET("/config/status", configHandler.Status)

		api.POST("/webhook/place-order", webhookHandler.PlaceOrder)
	}

	r.POST("/webhook/tradingview", webhookHandler.TradingView)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
