package webhook

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/pubsub"
	pubsubRouter "github.com/mietwerk/billing-core/internal/pubsub/router"
	"github.com/mietwerk/billing-core/internal/service"
	"github.com/mietwerk/billing-core/internal/types"
)

// Processor consumes verified Stripe events from the internal queue and
// routes each to the handlers its type and shape call for.
type Processor interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type processor struct {
	pubSub  pubsub.PubSub
	config  *config.WebhookConfig
	logger  *logger.Logger
	archive service.ArchiveService
	comm    service.CommissionService
	sync    service.SubscriptionSyncService
	ref     service.ReferralService
	order   service.OrderService
}

// NewProcessor creates a new webhook event processor
func NewProcessor(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
	archiveService service.ArchiveService,
	commissionService service.CommissionService,
	syncService service.SubscriptionSyncService,
	referralService service.ReferralService,
	orderService service.OrderService,
) Processor {
	return &processor{
		pubSub:  pubSub,
		config:  &cfg.Webhook,
		logger:  logger,
		archive: archiveService,
		comm:    commissionService,
		sync:    syncService,
		ref:     referralService,
		order:   orderService,
	}
}

func (p *processor) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"stripe_event_processor",
		p.config.Topic,
		p.pubSub,
		p.processMessage,
	)
}

// processMessage processes a single queued event
func (p *processor) processMessage(msg *message.Message) error {
	event, err := DecodeEvent(msg.Payload)
	if err != nil {
		p.logger.Errorw("failed to decode queued event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil // malformed payloads never become deliverable, don't retry
	}

	return p.dispatch(msg.Context(), event)
}

// dispatch routes one event. Invoice lifecycle events always feed the
// archiver; beyond that each event reaches at most one handler. Unknown
// or unmodeled event types are ignored, not errors.
func (p *processor) dispatch(ctx context.Context, event *Event) error {
	eventType := types.WebhookEventType(event.Type)

	if eventType.IsInvoiceLifecycle() {
		p.archiveInvoice(ctx, event)
	}

	switch eventType {
	case types.WebhookEventTypeInvoicePaid:
		return p.handleInvoicePaid(ctx, event)
	case types.WebhookEventTypeChargeRefunded:
		return p.handleChargeRefunded(ctx, event)
	}

	var env objectEnvelope
	if err := json.Unmarshal(event.Data.Object, &env); err != nil {
		p.logger.Debugw("event object not inspectable, ignoring",
			"event_id", event.ID,
			"event_type", event.Type,
		)
		return nil
	}

	// A one-time payment intent without an invoice is an echo of the
	// checkout session completion already handled above
	if eventType == types.WebhookEventTypePaymentIntentSucceeded && env.Invoice == "" {
		return nil
	}

	if env.Customer == "" {
		return nil
	}

	return p.handleCustomerEvent(ctx, event, eventType, env.Customer.String())
}

func (p *processor) archiveInvoice(ctx context.Context, event *Event) {
	var inv InvoiceObject
	if err := json.Unmarshal(event.Data.Object, &inv); err != nil {
		p.logger.Errorw("failed to decode invoice payload for archival",
			"error", err,
			"event_id", event.ID,
		)
		return
	}

	// ArchiveInvoice is best-effort and never returns an error
	_ = p.archive.ArchiveInvoice(ctx, &service.InvoiceSnapshot{
		InvoiceID:        inv.ID,
		CustomerID:       inv.Customer.String(),
		Number:           inv.Number,
		Status:           inv.Status,
		Currency:         inv.Currency,
		Total:            inv.Total,
		Tax:              inv.Tax,
		Subtotal:         inv.Subtotal,
		Created:          inv.Created,
		PeriodStart:      inv.PeriodStart,
		PeriodEnd:        inv.PeriodEnd,
		CustomerEmail:    inv.CustomerEmail,
		CustomerName:     inv.CustomerName,
		HostedInvoiceURL: inv.HostedInvoiceURL,
		PDFURL:           inv.InvoicePDF,
		LineCount:        len(inv.Lines.Data),
	})
}

func (p *processor) handleInvoicePaid(ctx context.Context, event *Event) error {
	var inv InvoiceObject
	if err := json.Unmarshal(event.Data.Object, &inv); err != nil {
		p.logger.Errorw("failed to decode paid invoice payload",
			"error", err,
			"event_id", event.ID,
		)
		return nil
	}

	return p.comm.HandleInvoicePaid(ctx, &service.PaidInvoice{
		EventID:        event.ID,
		InvoiceID:      inv.ID,
		CustomerID:     inv.Customer.String(),
		SubscriptionID: inv.Subscription.String(),
		Total:          inv.Total,
		Subtotal:       inv.Subtotal,
	})
}

func (p *processor) handleChargeRefunded(ctx context.Context, event *Event) error {
	var ch ChargeObject
	if err := json.Unmarshal(event.Data.Object, &ch); err != nil {
		p.logger.Errorw("failed to decode refunded charge payload",
			"error", err,
			"event_id", event.ID,
		)
		return nil
	}

	return p.comm.HandleChargeRefunded(ctx, &service.RefundedCharge{
		EventID:   event.ID,
		ChargeID:  ch.ID,
		InvoiceID: ch.Invoice.String(),
	})
}

// handleCustomerEvent covers every remaining event carrying a customer
// reference: completed one-time checkouts become orders, everything that
// looks like a subscription change triggers a sync.
func (p *processor) handleCustomerEvent(ctx context.Context, event *Event, eventType types.WebhookEventType, customerID string) error {
	accountRef := ""

	if eventType == types.WebhookEventTypeCheckoutSessionComplete {
		var session CheckoutSessionObject
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			p.logger.Errorw("failed to decode checkout session payload",
				"error", err,
				"event_id", event.ID,
			)
			return nil
		}
		accountRef = session.ClientReferenceID

		if session.Mode == types.CheckoutModePayment && session.PaymentStatus == types.CheckoutPaymentStatusPaid {
			return p.order.RecordCheckoutOrder(ctx, &service.CheckoutOrder{
				CheckoutSessionID: session.ID,
				PaymentIntentID:   session.PaymentIntent.String(),
				CustomerID:        customerID,
				AmountTotal:       session.AmountTotal,
				AmountSubtotal:    session.AmountSubtotal,
				Currency:          session.Currency,
				PaymentStatus:     session.PaymentStatus,
			})
		}
		if session.Mode != types.CheckoutModeSubscription {
			return nil
		}
	}

	if err := p.sync.SyncCustomer(ctx, customerID); err != nil {
		return err
	}

	// Best-effort: a failed backfill must not fail the sync that already
	// succeeded
	if err := p.ref.LinkCustomer(ctx, accountRef, customerID); err != nil {
		p.logger.Warnw("referral customer backfill failed",
			"error", err,
			"customer_id", customerID,
			"event_id", event.ID,
		)
	}

	return nil
}
