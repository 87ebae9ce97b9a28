package service

import (
	"context"

	ierr "github.com/mietwerk/billing-core/internal/errors"
)

// ReferralService backfills the Stripe customer id onto referral rows.
// The referral is created before any checkout happens, so the link to
// the customer can only be made once billing events start arriving.
type ReferralService interface {
	// LinkCustomer attaches customerID to the referral of the given
	// account. When accountID is empty the account is resolved through
	// the customer mapping. Best-effort: a missing referral or mapping
	// is not an error, and an already linked referral is left untouched.
	LinkCustomer(ctx context.Context, accountID, customerID string) error
}

type referralService struct {
	ServiceParams
}

// NewReferralService creates a new referral service
func NewReferralService(params ServiceParams) ReferralService {
	return &referralService{
		ServiceParams: params,
	}
}

func (s *referralService) LinkCustomer(ctx context.Context, accountID, customerID string) error {
	if customerID == "" {
		return nil
	}

	if accountID == "" {
		mapping, err := s.AccountRepo.GetByCustomerID(ctx, customerID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil
			}
			return err
		}
		accountID = mapping.AccountID
	}

	ref, err := s.ReferralRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil
		}
		return err
	}

	if ref.CustomerID != nil {
		// First write wins
		return nil
	}

	if err := s.ReferralRepo.SetCustomerID(ctx, ref.ID, customerID); err != nil {
		s.Logger.Errorw("failed to backfill referral customer id",
			"error", err,
			"referral_id", ref.ID,
			"customer_id", customerID,
		)
		return err
	}

	s.Logger.Infow("referral linked to customer",
		"referral_id", ref.ID,
		"account_id", accountID,
		"customer_id", customerID,
	)

	return nil
}
