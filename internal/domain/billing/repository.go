package billing

import "context"

// Repository defines the interface for billing info persistence.
// This core never creates billing rows; account provisioning owns that.
type Repository interface {
	// GetByCustomerID returns the row carrying the Stripe customer id,
	// or ErrNotFound
	GetByCustomerID(ctx context.Context, customerID string) (*Info, error)
	// GetByAccountID returns the row for an internal account,
	// or ErrNotFound
	GetByAccountID(ctx context.Context, accountID string) (*Info, error)
	// Update persists the full row
	Update(ctx context.Context, info *Info) error
}
