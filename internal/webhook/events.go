package webhook

import (
	"encoding/json"

	ierr "github.com/mietwerk/billing-core/internal/errors"
)

// StripeID decodes a provider reference field that may arrive as a plain
// id string, as an expanded object carrying an "id", or as null. Anything
// else decodes to the empty string so callers can treat "no id" uniformly.
type StripeID string

func (s *StripeID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = StripeID(str)
		return nil
	}

	if data[0] == '{' {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*s = StripeID(obj.ID)
		return nil
	}

	*s = ""
	return nil
}

func (s StripeID) String() string {
	return string(s)
}

// Event is the verified provider event as published onto the internal
// queue. Data.Object stays raw until the dispatcher knows which concrete
// payload shape the event type carries.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// DecodeEvent parses a raw provider event envelope
func DecodeEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("invalid event envelope").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}

// InvoiceObject is the invoice payload carried by invoice lifecycle
// events. Amounts are in the provider's minor units; timestamps are
// epoch seconds.
type InvoiceObject struct {
	ID               string   `json:"id"`
	Customer         StripeID `json:"customer"`
	Subscription     StripeID `json:"subscription"`
	Number           string   `json:"number"`
	Status           string   `json:"status"`
	Currency         string   `json:"currency"`
	Total            int64    `json:"total"`
	Tax              int64    `json:"tax"`
	Subtotal         int64    `json:"subtotal"`
	Created          int64    `json:"created"`
	PeriodStart      int64    `json:"period_start"`
	PeriodEnd        int64    `json:"period_end"`
	CustomerEmail    string   `json:"customer_email"`
	CustomerName     string   `json:"customer_name"`
	HostedInvoiceURL string   `json:"hosted_invoice_url"`
	InvoicePDF       string   `json:"invoice_pdf"`
	Lines            struct {
		Data []json.RawMessage `json:"data"`
	} `json:"lines"`
}

// ChargeObject is the charge payload carried by charge.refunded events
type ChargeObject struct {
	ID      string   `json:"id"`
	Invoice StripeID `json:"invoice"`
}

// CheckoutSessionObject is the session payload carried by
// checkout.session.completed events
type CheckoutSessionObject struct {
	ID                string            `json:"id"`
	Customer          StripeID          `json:"customer"`
	Mode              string            `json:"mode"`
	PaymentStatus     string            `json:"payment_status"`
	PaymentIntent     StripeID          `json:"payment_intent"`
	AmountTotal       int64             `json:"amount_total"`
	AmountSubtotal    int64             `json:"amount_subtotal"`
	Currency          string            `json:"currency"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// objectEnvelope probes the fields shared across otherwise unmodeled
// event payloads: the customer reference that drives subscription sync
// and the invoice reference that distinguishes a one-time payment intent
// echo from a subscription charge.
type objectEnvelope struct {
	Customer StripeID `json:"customer"`
	Invoice  StripeID `json:"invoice"`
}
