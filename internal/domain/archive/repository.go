package archive

import (
	"context"
	"time"
)

// Repository defines the interface for invoice archive persistence
type Repository interface {
	// GetByInvoiceID returns the archive row for a Stripe invoice,
	// or ErrNotFound
	GetByInvoiceID(ctx context.Context, invoiceID string) (*InvoiceArchive, error)
	// Upsert creates or replaces the archive row keyed by invoice id.
	// The PDF cache columns are left untouched; MarkPDFCached owns them.
	Upsert(ctx context.Context, row *InvoiceArchive) error
	// MarkPDFCached stamps the storage path and cache timestamp after a
	// successful PDF mirror
	MarkPDFCached(ctx context.Context, invoiceID, storagePath string, cachedAt time.Time) error
}
