package referral

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for referral persistence
type Repository interface {
	// GetByCustomerID returns the referral whose customer id matches,
	// or ErrNotFound when the payer was not referred
	GetByCustomerID(ctx context.Context, customerID string) (*Referral, error)
	// GetByAccountID returns the referral for a referred account,
	// or ErrNotFound
	GetByAccountID(ctx context.Context, accountID string) (*Referral, error)
	// Update persists status and payment timestamps
	Update(ctx context.Context, ref *Referral) error
	// SetCustomerID attaches the Stripe customer id to a referral.
	// First write wins: a referral that already carries a customer id
	// is left untouched.
	SetCustomerID(ctx context.Context, referralID, customerID string) error
	// IncrementLifetimeValue atomically adds amount to the referral's
	// lifetime value at the store
	IncrementLifetimeValue(ctx context.Context, referralID string, amount decimal.Decimal) error
}
