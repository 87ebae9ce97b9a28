package testutil

import (
	"context"

	"github.com/mietwerk/billing-core/internal/domain/affiliate"
)

// InMemoryAffiliateStore implements affiliate.Repository
type InMemoryAffiliateStore struct {
	*InMemoryStore[*affiliate.Affiliate]
}

// NewInMemoryAffiliateStore creates a new in-memory affiliate store
func NewInMemoryAffiliateStore() *InMemoryAffiliateStore {
	return &InMemoryAffiliateStore{
		InMemoryStore: NewInMemoryStore[*affiliate.Affiliate](),
	}
}

// Seed inserts an affiliate row directly
func (s *InMemoryAffiliateStore) Seed(ctx context.Context, a *affiliate.Affiliate) {
	c := *a
	s.Set(ctx, a.ID, &c)
}

func (s *InMemoryAffiliateStore) Get(ctx context.Context, id string) (*affiliate.Affiliate, error) {
	a, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c := *a
	return &c, nil
}
