package testutil

import (
	"context"

	"github.com/mietwerk/billing-core/internal/domain/billing"
	ierr "github.com/mietwerk/billing-core/internal/errors"
)

// InMemoryBillingStore implements billing.Repository
type InMemoryBillingStore struct {
	*InMemoryStore[*billing.Info]
}

// NewInMemoryBillingStore creates a new in-memory billing info store
func NewInMemoryBillingStore() *InMemoryBillingStore {
	return &InMemoryBillingStore{
		InMemoryStore: NewInMemoryStore[*billing.Info](),
	}
}

func copyBillingInfo(i *billing.Info) *billing.Info {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Seed inserts a billing info row directly, bypassing repository semantics
func (s *InMemoryBillingStore) Seed(ctx context.Context, info *billing.Info) {
	s.Set(ctx, info.AccountID, copyBillingInfo(info))
}

func (s *InMemoryBillingStore) GetByCustomerID(ctx context.Context, customerID string) (*billing.Info, error) {
	matches := s.List(ctx, func(ctx context.Context, i *billing.Info) bool {
		return i.CustomerID != nil && *i.CustomerID == customerID
	}, nil)
	if len(matches) == 0 {
		return nil, ierr.NewError("billing info not found").
			Mark(ierr.ErrNotFound)
	}
	return copyBillingInfo(matches[0]), nil
}

func (s *InMemoryBillingStore) GetByAccountID(ctx context.Context, accountID string) (*billing.Info, error) {
	info, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return copyBillingInfo(info), nil
}

func (s *InMemoryBillingStore) Update(ctx context.Context, info *billing.Info) error {
	return s.InMemoryStore.Update(ctx, info.AccountID, copyBillingInfo(info))
}
