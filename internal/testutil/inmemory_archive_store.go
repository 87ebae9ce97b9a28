package testutil

import (
	"context"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/archive"
)

// InMemoryArchiveStore implements archive.Repository
type InMemoryArchiveStore struct {
	*InMemoryStore[*archive.InvoiceArchive]
}

// NewInMemoryArchiveStore creates a new in-memory invoice archive store
func NewInMemoryArchiveStore() *InMemoryArchiveStore {
	return &InMemoryArchiveStore{
		InMemoryStore: NewInMemoryStore[*archive.InvoiceArchive](),
	}
}

func copyArchiveRow(r *archive.InvoiceArchive) *archive.InvoiceArchive {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func (s *InMemoryArchiveStore) GetByInvoiceID(ctx context.Context, invoiceID string) (*archive.InvoiceArchive, error) {
	row, err := s.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return copyArchiveRow(row), nil
}

func (s *InMemoryArchiveStore) Upsert(ctx context.Context, row *archive.InvoiceArchive) error {
	updated := copyArchiveRow(row)
	// The PDF cache columns belong to MarkPDFCached
	if existing, err := s.Get(ctx, row.InvoiceID); err == nil {
		updated.PDFStoragePath = existing.PDFStoragePath
		updated.PDFCachedAt = existing.PDFCachedAt
	}
	s.Set(ctx, row.InvoiceID, updated)
	return nil
}

func (s *InMemoryArchiveStore) MarkPDFCached(ctx context.Context, invoiceID, storagePath string, cachedAt time.Time) error {
	existing, err := s.Get(ctx, invoiceID)
	if err != nil {
		return err
	}
	updated := copyArchiveRow(existing)
	updated.PDFStoragePath = &storagePath
	updated.PDFCachedAt = &cachedAt
	return s.InMemoryStore.Update(ctx, invoiceID, updated)
}
