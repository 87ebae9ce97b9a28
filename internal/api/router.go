package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/mietwerk/billing-core/internal/api/v1"
)

type Handlers struct {
	Webhook *v1.WebhookHandler
	Health  *v1.HealthHandler
}

func NewHandlers(webhook *v1.WebhookHandler, health *v1.HealthHandler) Handlers {
	return Handlers{
		Webhook: webhook,
		Health:  health,
	}
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	// The provider only ever POSTs; anything else is a client error
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeEvent)
		webhooks.OPTIONS("/stripe", handlers.Webhook.HandlePreflight)
	}
}
