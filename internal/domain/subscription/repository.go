package subscription

import "context"

// Repository defines the interface for subscription snapshot persistence
type Repository interface {
	// Upsert creates or replaces the snapshot keyed by customer id
	Upsert(ctx context.Context, snapshot *Snapshot) error
	// GetByCustomerID returns the snapshot for a Stripe customer,
	// or ErrNotFound
	GetByCustomerID(ctx context.Context, customerID string) (*Snapshot, error)
}
