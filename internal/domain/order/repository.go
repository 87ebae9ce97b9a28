package order

import "context"

// Repository defines the interface for one-time order persistence
type Repository interface {
	// CreateIfAbsent inserts the order unless one for the same checkout
	// session already exists. Returns true when the row was inserted.
	CreateIfAbsent(ctx context.Context, o *Order) (bool, error)
	// GetByCheckoutSessionID returns the order for a checkout session,
	// or ErrNotFound
	GetByCheckoutSessionID(ctx context.Context, sessionID string) (*Order, error)
}
