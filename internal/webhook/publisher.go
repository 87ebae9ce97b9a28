package webhook

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/pubsub"
)

// Publisher hands verified event payloads to the internal queue. The raw
// bytes go onto the queue unchanged; the processor decodes them.
type Publisher interface {
	PublishEvent(ctx context.Context, eventID string, payload []byte) error
	Close() error
}

type publisher struct {
	pubSub pubsub.PubSub
	config *config.WebhookConfig
	logger *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) (Publisher, error) {
	return &publisher{
		pubSub: pubSub,
		config: &cfg.Webhook,
		logger: logger,
	}, nil
}

func (p *publisher) PublishEvent(ctx context.Context, eventID string, payload []byte) error {
	messageID := eventID
	if messageID == "" {
		messageID = watermill.NewUUID()
	}

	msg := message.NewMessage(messageID, payload)
	msg.SetContext(ctx)

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish event",
			"error", err,
			"event_id", eventID,
			"topic", p.config.Topic,
		)
		return err
	}

	p.logger.Debugw("event published",
		"event_id", eventID,
		"topic", p.config.Topic,
	)

	return nil
}

// Close closes the publisher
func (p *publisher) Close() error {
	return p.pubSub.Close()
}
