package testutil

import (
	"context"

	"github.com/mietwerk/billing-core/internal/domain/commission"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/types"
)

// InMemoryCommissionStore implements commission.Repository
type InMemoryCommissionStore struct {
	*InMemoryStore[*commission.Commission]
}

// NewInMemoryCommissionStore creates a new in-memory commission store
func NewInMemoryCommissionStore() *InMemoryCommissionStore {
	return &InMemoryCommissionStore{
		InMemoryStore: NewInMemoryStore[*commission.Commission](),
	}
}

func copyCommission(c *commission.Commission) *commission.Commission {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (s *InMemoryCommissionStore) GetByEventID(ctx context.Context, eventID string) (*commission.Commission, error) {
	matches := s.List(ctx, func(ctx context.Context, c *commission.Commission) bool {
		return c.EventID == eventID
	}, nil)
	if len(matches) == 0 {
		return nil, ierr.NewError("commission not found").
			Mark(ierr.ErrNotFound)
	}
	return copyCommission(matches[0]), nil
}

func (s *InMemoryCommissionStore) GetOriginalByInvoiceID(ctx context.Context, invoiceID string) (*commission.Commission, error) {
	matches := s.List(ctx, func(ctx context.Context, c *commission.Commission) bool {
		return c.InvoiceID == invoiceID
	}, func(i, j *commission.Commission) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
	if len(matches) == 0 {
		return nil, ierr.NewError("commission not found").
			Mark(ierr.ErrNotFound)
	}
	return copyCommission(matches[0]), nil
}

func (s *InMemoryCommissionStore) CreateIfAbsent(ctx context.Context, c *commission.Commission) (bool, error) {
	if _, err := s.GetByEventID(ctx, c.EventID); err == nil {
		return false, nil
	}
	if err := s.Create(ctx, c.ID, copyCommission(c)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *InMemoryCommissionStore) UpdateStatus(ctx context.Context, id string, status types.CommissionStatus) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := copyCommission(existing)
	updated.Status = status
	return s.InMemoryStore.Update(ctx, id, updated)
}

func (s *InMemoryCommissionStore) ListByInvoiceID(ctx context.Context, invoiceID string) ([]*commission.Commission, error) {
	matches := s.List(ctx, func(ctx context.Context, c *commission.Commission) bool {
		return c.InvoiceID == invoiceID
	}, func(i, j *commission.Commission) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
	result := make([]*commission.Commission, 0, len(matches))
	for _, c := range matches {
		result = append(result, copyCommission(c))
	}
	return result, nil
}
