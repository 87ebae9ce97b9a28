package testutil

import (
	"context"

	"github.com/mietwerk/billing-core/internal/domain/subscription"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Snapshot]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Snapshot](),
	}
}

func copySnapshot(s *subscription.Snapshot) *subscription.Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func (s *InMemorySubscriptionStore) Upsert(ctx context.Context, snapshot *subscription.Snapshot) error {
	s.Set(ctx, snapshot.CustomerID, copySnapshot(snapshot))
	return nil
}

func (s *InMemorySubscriptionStore) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Snapshot, error) {
	snapshot, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return copySnapshot(snapshot), nil
}
