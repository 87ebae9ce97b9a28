package commission

import (
	"context"

	"github.com/mietwerk/billing-core/internal/types"
)

// Repository defines the interface for commission ledger persistence
type Repository interface {
	// GetByEventID returns the commission recorded for a Stripe event,
	// or ErrNotFound
	GetByEventID(ctx context.Context, eventID string) (*Commission, error)
	// GetOriginalByInvoiceID returns the earliest commission row for an
	// invoice (the original, not a later compensating reversal row),
	// or ErrNotFound
	GetOriginalByInvoiceID(ctx context.Context, invoiceID string) (*Commission, error)
	// CreateIfAbsent inserts the row unless one with the same event id
	// already exists. Returns true when the row was inserted. Backed by
	// a conditional insert so concurrent duplicate delivery is safe.
	CreateIfAbsent(ctx context.Context, c *Commission) (bool, error)
	// UpdateStatus flips the status of an existing row
	UpdateStatus(ctx context.Context, id string, status types.CommissionStatus) error
	// ListByInvoiceID returns all ledger rows for an invoice
	ListByInvoiceID(ctx context.Context, invoiceID string) ([]*Commission, error)
}
