package types

// WebhookEventType enumerates the Stripe event types this core routes on.
// Anything else is explicitly ignored by the dispatcher.
type WebhookEventType string

const (
	WebhookEventTypeInvoiceFinalized        WebhookEventType = "invoice.finalized"
	WebhookEventTypeInvoicePaid             WebhookEventType = "invoice.paid"
	WebhookEventTypeInvoicePaymentFailed    WebhookEventType = "invoice.payment_failed"
	WebhookEventTypeInvoiceVoided           WebhookEventType = "invoice.voided"
	WebhookEventTypeInvoiceUpdated          WebhookEventType = "invoice.updated"
	WebhookEventTypeChargeRefunded          WebhookEventType = "charge.refunded"
	WebhookEventTypeCheckoutSessionComplete WebhookEventType = "checkout.session.completed"
	WebhookEventTypePaymentIntentSucceeded  WebhookEventType = "payment_intent.succeeded"
)

// IsInvoiceLifecycle reports whether the event type is one of the invoice
// lifecycle events that always trigger the invoice archiver, independent of
// any further routing.
func (t WebhookEventType) IsInvoiceLifecycle() bool {
	switch t {
	case WebhookEventTypeInvoiceFinalized,
		WebhookEventTypeInvoicePaid,
		WebhookEventTypeInvoicePaymentFailed,
		WebhookEventTypeInvoiceVoided,
		WebhookEventTypeInvoiceUpdated:
		return true
	}
	return false
}

// CheckoutSessionMode values as delivered by Stripe
const (
	CheckoutModeSubscription = "subscription"
	CheckoutModePayment      = "payment"
)

// CheckoutPaymentStatusPaid is the payment_status of a settled checkout session
const CheckoutPaymentStatusPaid = "paid"
