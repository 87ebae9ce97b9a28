package testutil

import (
	"context"

	"github.com/mietwerk/billing-core/internal/domain/referral"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/shopspring/decimal"
)

// InMemoryReferralStore implements referral.Repository
type InMemoryReferralStore struct {
	*InMemoryStore[*referral.Referral]
}

// NewInMemoryReferralStore creates a new in-memory referral store
func NewInMemoryReferralStore() *InMemoryReferralStore {
	return &InMemoryReferralStore{
		InMemoryStore: NewInMemoryStore[*referral.Referral](),
	}
}

func copyReferral(r *referral.Referral) *referral.Referral {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Seed inserts a referral row directly
func (s *InMemoryReferralStore) Seed(ctx context.Context, r *referral.Referral) {
	s.Set(ctx, r.ID, copyReferral(r))
}

func (s *InMemoryReferralStore) GetByCustomerID(ctx context.Context, customerID string) (*referral.Referral, error) {
	matches := s.List(ctx, func(ctx context.Context, r *referral.Referral) bool {
		return r.CustomerID != nil && *r.CustomerID == customerID
	}, nil)
	if len(matches) == 0 {
		return nil, ierr.NewError("referral not found").
			Mark(ierr.ErrNotFound)
	}
	return copyReferral(matches[0]), nil
}

func (s *InMemoryReferralStore) GetByAccountID(ctx context.Context, accountID string) (*referral.Referral, error) {
	matches := s.List(ctx, func(ctx context.Context, r *referral.Referral) bool {
		return r.AccountID == accountID
	}, nil)
	if len(matches) == 0 {
		return nil, ierr.NewError("referral not found").
			Mark(ierr.ErrNotFound)
	}
	return copyReferral(matches[0]), nil
}

func (s *InMemoryReferralStore) Update(ctx context.Context, ref *referral.Referral) error {
	existing, err := s.Get(ctx, ref.ID)
	if err != nil {
		return err
	}
	updated := copyReferral(ref)
	// The store owns lifetime value through IncrementLifetimeValue
	updated.LifetimeValue = existing.LifetimeValue
	return s.InMemoryStore.Update(ctx, ref.ID, updated)
}

func (s *InMemoryReferralStore) SetCustomerID(ctx context.Context, referralID, customerID string) error {
	existing, err := s.Get(ctx, referralID)
	if err != nil {
		return err
	}
	if existing.CustomerID != nil {
		// first write wins
		return nil
	}
	updated := copyReferral(existing)
	updated.CustomerID = &customerID
	return s.InMemoryStore.Update(ctx, referralID, updated)
}

func (s *InMemoryReferralStore) IncrementLifetimeValue(ctx context.Context, referralID string, amount decimal.Decimal) error {
	existing, err := s.Get(ctx, referralID)
	if err != nil {
		return err
	}
	updated := copyReferral(existing)
	updated.LifetimeValue = existing.LifetimeValue.Add(amount)
	return s.InMemoryStore.Update(ctx, referralID, updated)
}
