package stripe

import (
	"context"

	"github.com/mietwerk/billing-core/internal/config"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client wraps the Stripe API client with the configuration this core
// needs. Constructed once at startup and injected; no package-level state.
type Client struct {
	sc     *stripe.Client
	cfg    *config.StripeConfig
	logger *logger.Logger
}

// NewClient creates a new Stripe client from configuration
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		sc:     stripe.NewClient(cfg.Stripe.SecretKey, nil),
		cfg:    &cfg.Stripe,
		logger: logger,
	}
}

// HasWebhookSecret reports whether a webhook signing secret is configured.
// Without one the endpoint must fail closed rather than skip verification.
func (c *Client) HasWebhookSecret() bool {
	return c.cfg.WebhookSecret != ""
}

// ParseWebhookEvent verifies the signature against the raw request body and
// only then parses the payload into a typed event. Parsing before
// verification would let unsigned payloads reach business logic.
func (c *Client) ParseWebhookEvent(payload []byte, signature string) (*stripe.Event, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret, options)
	if err != nil {
		c.logger.Errorw("Stripe webhook verification failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}

// LatestSubscription returns the customer's most recent subscription with
// the default payment method expanded, or nil when the customer has none.
func (c *Client) LatestSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Limit = stripe.Int64(1)
	params.Expand = []*string{stripe.String("data.default_payment_method")}

	for sub, err := range c.sc.V1Subscriptions.List(ctx, params) {
		if err != nil {
			c.logger.Errorw("failed to list subscriptions from Stripe",
				"error", err,
				"customer_id", customerID,
			)
			return nil, ierr.WithError(err).
				WithHint("Could not fetch subscription information from Stripe").
				WithReportableDetails(map[string]any{
					"customer_id": customerID,
				}).
				Mark(ierr.ErrSystem)
		}
		return sub, nil
	}

	return nil, nil
}
