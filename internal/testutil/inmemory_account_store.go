package testutil

import (
	"context"

	"github.com/mietwerk/billing-core/internal/domain/account"
)

// InMemoryAccountStore implements account.Repository
type InMemoryAccountStore struct {
	*InMemoryStore[*account.CustomerMapping]
}

// NewInMemoryAccountStore creates a new in-memory customer mapping store
func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		InMemoryStore: NewInMemoryStore[*account.CustomerMapping](),
	}
}

// Seed inserts a customer-to-account mapping
func (s *InMemoryAccountStore) Seed(ctx context.Context, m *account.CustomerMapping) {
	c := *m
	s.Set(ctx, m.CustomerID, &c)
}

func (s *InMemoryAccountStore) GetByCustomerID(ctx context.Context, customerID string) (*account.CustomerMapping, error) {
	m, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	c := *m
	return &c, nil
}
