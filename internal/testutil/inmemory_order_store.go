package testutil

import (
	"context"

	"github.com/mietwerk/billing-core/internal/domain/order"
	ierr "github.com/mietwerk/billing-core/internal/errors"
)

// InMemoryOrderStore implements order.Repository
type InMemoryOrderStore struct {
	*InMemoryStore[*order.Order]
}

// NewInMemoryOrderStore creates a new in-memory order store
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore[*order.Order](),
	}
}

func copyOrder(o *order.Order) *order.Order {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

func (s *InMemoryOrderStore) CreateIfAbsent(ctx context.Context, o *order.Order) (bool, error) {
	if _, err := s.GetByCheckoutSessionID(ctx, o.CheckoutSessionID); err == nil {
		return false, nil
	}
	if err := s.Create(ctx, o.ID, copyOrder(o)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *InMemoryOrderStore) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	matches := s.List(ctx, func(ctx context.Context, o *order.Order) bool {
		return o.CheckoutSessionID == sessionID
	}, nil)
	if len(matches) == 0 {
		return nil, ierr.NewError("order not found").
			Mark(ierr.ErrNotFound)
	}
	return copyOrder(matches[0]), nil
}
