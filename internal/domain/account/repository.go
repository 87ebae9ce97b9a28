package account

import "context"

// Repository defines the interface for the customer-to-account mapping
type Repository interface {
	// GetByCustomerID returns the mapping for a Stripe customer,
	// or ErrNotFound
	GetByCustomerID(ctx context.Context, customerID string) (*CustomerMapping, error)
}
