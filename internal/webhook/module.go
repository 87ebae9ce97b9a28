package webhook

import (
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/pubsub"
	"github.com/mietwerk/billing-core/internal/pubsub/memory"
	"go.uber.org/fx"
)

// Module provides the queue, publisher and processor for inbound Stripe
// events
var Module = fx.Options(
	fx.Provide(
		providePubSub,
		NewPublisher,
		NewProcessor,
	),
)

func providePubSub(logger *logger.Logger) pubsub.PubSub {
	return memory.NewPubSub(logger)
}
