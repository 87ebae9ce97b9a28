package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/stripe"
	"github.com/mietwerk/billing-core/internal/webhook"
)

// WebhookHandler receives Stripe webhook deliveries. The request is
// acknowledged as soon as the signature checks out; all business logic
// runs asynchronously off the internal queue.
type WebhookHandler struct {
	stripe    *stripe.Client
	publisher webhook.Publisher
	logger    *logger.Logger
}

func NewWebhookHandler(
	stripeClient *stripe.Client,
	publisher webhook.Publisher,
	logger *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		stripe:    stripeClient,
		publisher: publisher,
		logger:    logger,
	}
}

// HandleStripeEvent verifies and enqueues one webhook delivery.
// The raw body bytes are verified exactly as received; re-serialized
// JSON would not match the signature.
func (h *WebhookHandler) HandleStripeEvent(c *gin.Context) {
	if !h.stripe.HasWebhookSecret() {
		// Fail closed: without a secret we must not skip verification
		h.logger.Error("webhook secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook secret not configured"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing Stripe-Signature header"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := h.stripe.ParseWebhookEvent(payload, signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.publisher.PublishEvent(c.Request.Context(), event.ID, payload); err != nil {
		h.logger.Errorw("failed to enqueue webhook event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue event"})
		return
	}

	h.logger.Infow("webhook event accepted",
		"event_id", event.ID,
		"event_type", event.Type,
	)

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// HandlePreflight answers CORS preflight requests permissively
func (h *WebhookHandler) HandlePreflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Stripe-Signature")
	c.Status(http.StatusNoContent)
}
