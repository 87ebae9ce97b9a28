package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/logger"
)

// Router manages all message routing. Handlers get retries with backoff;
// messages that exhaust retries land on the dead-letter topic where they
// are logged instead of silently dropped.
type Router struct {
	router *message.Router
	logger *logger.Logger
	config *config.WebhookConfig
	dlq    *gochannel.GoChannel
}

const deadLetterTopic = "stripe_events_dlq"

// NewRouter creates a new message router
func NewRouter(cfg *config.Configuration, logger *logger.Logger) (*Router, error) {
	router, err := message.NewRouter(
		message.RouterConfig{},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, err
	}

	dlq := gochannel.NewGoChannel(
		gochannel.Config{Persistent: true},
		watermill.NewStdLogger(false, false),
	)

	poisonQueue, err := middleware.PoisonQueue(dlq, deadLetterTopic)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          cfg.Webhook.MaxRetries,
			InitialInterval:     cfg.Webhook.InitialInterval,
			MaxInterval:         cfg.Webhook.MaxInterval,
			Multiplier:          cfg.Webhook.Multiplier,
			MaxElapsedTime:      cfg.Webhook.MaxElapsedTime,
			RandomizationFactor: 0.5,
			Logger:              watermill.NewStdLogger(false, false),
			OnRetryHook: func(retryNum int, delay time.Duration) {
				logger.Infow("retrying message",
					"retry_number", retryNum,
					"max_retries", cfg.Webhook.MaxRetries,
					"delay", delay,
				)
			},
		}.Middleware,
	)

	return &Router{
		router: router,
		logger: logger,
		config: &cfg.Webhook,
		dlq:    dlq,
	}, nil
}

// AddNoPublishHandler adds a handler that doesn't publish messages
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
) {
	r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			err := handlerFunc(msg)
			if err != nil {
				r.logger.Errorw("handler failed",
					"error", err,
					"correlation_id", middleware.MessageCorrelationID(msg),
					"message_uuid", msg.UUID,
				)
			}
			return err
		},
	)
}

// Run starts the router and the dead-letter drain; blocks until closed
func (r *Router) Run() error {
	r.logger.Info("starting router")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go r.drainDeadLetters(ctx)

	return r.router.Run(ctx)
}

// drainDeadLetters logs every message that exhausted its retries so a
// failed event is at least visible for manual replay via the provider
func (r *Router) drainDeadLetters(ctx context.Context) {
	msgs, err := r.dlq.Subscribe(ctx, deadLetterTopic)
	if err != nil {
		r.logger.Errorw("failed to subscribe to dead-letter topic", "error", err)
		return
	}
	for msg := range msgs {
		r.logger.Errorw("event moved to dead-letter queue",
			"message_uuid", msg.UUID,
			"reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey),
			"payload", string(msg.Payload),
		)
		msg.Ack()
	}
}

// Close gracefully shuts down the router
func (r *Router) Close() error {
	r.logger.Info("closing router")
	return r.router.Close()
}
