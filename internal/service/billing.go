package service

import (
	"context"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/billing"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/types"
)

// EndsAtUpdate carries the subscription end date for a billing update.
// Set distinguishes "leave the stored value unchanged" (Set false) from
// "write this value" (Set true), where a nil Value explicitly clears the
// stored date.
type EndsAtUpdate struct {
	Set   bool
	Value *time.Time
}

// BillingUpdate is the normalized subscription state forwarded by the
// synchronizer.
type BillingUpdate struct {
	CustomerID string
	Plan       types.SubscriptionPlan
	Status     types.BillingStatus
	EndsAt     EndsAtUpdate
}

// BillingService applies subscription state to the billing info row of
// whichever internal account the Stripe customer belongs to.
type BillingService interface {
	// ApplySubscriptionState resolves the customer to a billing row and
	// updates it. The returned outcome reports how the row was resolved;
	// an unresolvable customer is not an error.
	ApplySubscriptionState(ctx context.Context, update *BillingUpdate) (billing.ResolveOutcome, error)
}

type billingService struct {
	ServiceParams
}

// NewBillingService creates a new billing service
func NewBillingService(params ServiceParams) BillingService {
	return &billingService{
		ServiceParams: params,
	}
}

func (s *billingService) ApplySubscriptionState(ctx context.Context, update *BillingUpdate) (billing.ResolveOutcome, error) {
	info, outcome, err := s.resolveBillingInfo(ctx, update.CustomerID)
	if err != nil {
		return billing.ResolveNotFound, err
	}
	if info == nil {
		s.Logger.Warnw("no billing info found for customer",
			"customer_id", update.CustomerID,
		)
		return billing.ResolveNotFound, nil
	}

	now := time.Now().UTC()

	info.Plan = update.Plan
	info.Status = update.Status
	info.CustomerID = &update.CustomerID
	info.UpdatedAt = now

	if update.EndsAt.Set {
		info.SubscriptionEndsAt = update.EndsAt.Value
	}

	if update.Plan == types.PlanPro && update.Status == types.BillingStatusActive {
		// One-way latch: the first activation timestamp survives every
		// later downgrade and re-activation
		if info.ProActivatedAt == nil {
			info.ProActivatedAt = &now
		}
		// A paid-active account is no longer in trial
		info.TrialStartsAt = nil
		info.TrialEndsAt = nil
	}

	if err := s.BillingRepo.Update(ctx, info); err != nil {
		s.Logger.Errorw("failed to update billing info",
			"error", err,
			"account_id", info.AccountID,
			"customer_id", update.CustomerID,
		)
		return outcome, err
	}

	s.Logger.Infow("billing info updated",
		"account_id", info.AccountID,
		"customer_id", update.CustomerID,
		"plan", update.Plan,
		"status", update.Status,
		"resolve_outcome", outcome,
	)

	return outcome, nil
}

// resolveBillingInfo locates the billing row for a Stripe customer:
// directly by customer id, else through the customer-to-account mapping,
// backfilling the direct link in the latter case. Returns a nil row when
// neither path resolves.
func (s *billingService) resolveBillingInfo(ctx context.Context, customerID string) (*billing.Info, billing.ResolveOutcome, error) {
	info, err := s.BillingRepo.GetByCustomerID(ctx, customerID)
	if err == nil {
		return info, billing.ResolvedDirect, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, billing.ResolveNotFound, err
	}

	mapping, err := s.AccountRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, billing.ResolveNotFound, nil
		}
		return nil, billing.ResolveNotFound, err
	}

	info, err = s.BillingRepo.GetByAccountID(ctx, mapping.AccountID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, billing.ResolveNotFound, nil
		}
		return nil, billing.ResolveNotFound, err
	}

	s.Logger.Infow("resolved billing info via customer mapping",
		"customer_id", customerID,
		"account_id", mapping.AccountID,
	)

	return info, billing.ResolvedViaMapping, nil
}
