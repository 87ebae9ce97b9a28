package service

import (
	"context"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/commission"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/types"
	"github.com/shopspring/decimal"
)

// commissionHoldPeriod is how long a freshly earned commission stays on
// hold before it becomes eligible for payout
const commissionHoldPeriod = 14 * 24 * time.Hour

// refundEventPrefix derives the synthetic event id of a compensating
// reversal row from the refund event that triggered it
const refundEventPrefix = "refund_"

var minorUnitFactor = decimal.NewFromInt(100)

// PaidInvoice is the slice of an invoice.paid event the commission
// engine needs. Amounts are in Stripe minor units.
type PaidInvoice struct {
	EventID        string
	InvoiceID      string
	CustomerID     string
	SubscriptionID string
	Total          int64
	Subtotal       int64
}

// RefundedCharge is the slice of a charge.refunded event the reversal
// handler needs.
type RefundedCharge struct {
	EventID   string
	ChargeID  string
	InvoiceID string
}

// CommissionService maintains the affiliate commission ledger: one
// pending commission per qualifying paid invoice, reversed when the
// underlying charge is refunded.
type CommissionService interface {
	HandleInvoicePaid(ctx context.Context, inv *PaidInvoice) error
	HandleChargeRefunded(ctx context.Context, ch *RefundedCharge) error
}

type commissionService struct {
	ServiceParams
}

// NewCommissionService creates a new commission service
func NewCommissionService(params ServiceParams) CommissionService {
	return &commissionService{
		ServiceParams: params,
	}
}

func (s *commissionService) HandleInvoicePaid(ctx context.Context, inv *PaidInvoice) error {
	if inv.CustomerID == "" {
		s.Logger.Debugw("paid invoice carries no customer id, skipping",
			"invoice_id", inv.InvoiceID,
		)
		return nil
	}
	if inv.SubscriptionID == "" {
		s.Logger.Debugw("paid invoice not tied to a subscription, skipping",
			"invoice_id", inv.InvoiceID,
		)
		return nil
	}

	ref, err := s.ReferralRepo.GetByCustomerID(ctx, inv.CustomerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// Not an error: this payer was simply not referred
			s.Logger.Infow("no referral for paying customer",
				"customer_id", inv.CustomerID,
				"invoice_id", inv.InvoiceID,
			)
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	if ref.Status != types.ReferralStatusPaying {
		ref.Status = types.ReferralStatusPaying
		if ref.FirstPaymentAt == nil {
			ref.FirstPaymentAt = &now
		}
	}
	ref.LastPaymentAt = &now
	ref.UpdatedAt = now
	if err := s.ReferralRepo.Update(ctx, ref); err != nil {
		s.Logger.Errorw("failed to update referral",
			"error", err,
			"referral_id", ref.ID,
		)
		return err
	}

	if _, err := s.CommissionRepo.GetByEventID(ctx, inv.EventID); err == nil {
		s.Logger.Infow("commission already recorded for event",
			"event_id", inv.EventID,
			"invoice_id", inv.InvoiceID,
		)
		return nil
	} else if !ierr.IsNotFound(err) {
		return err
	}

	aff, err := s.AffiliateRepo.Get(ctx, ref.AffiliateID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Infow("affiliate not found, no commission recorded",
				"affiliate_id", ref.AffiliateID,
				"referral_id", ref.ID,
			)
			return nil
		}
		return err
	}
	if aff.Blocked {
		s.Logger.Infow("affiliate blocked, no commission recorded",
			"affiliate_id", aff.ID,
			"referral_id", ref.ID,
		)
		return nil
	}

	// Commission is computed from the pre-tax subtotal so affiliates do
	// not earn a cut of collected tax
	amountTotal := decimal.NewFromInt(inv.Total).Div(minorUnitFactor)
	amountNet := decimal.NewFromInt(inv.Subtotal).Div(minorUnitFactor)
	commissionAmount := amountNet.Mul(aff.CommissionRate)

	comm := &commission.Commission{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMMISSION),
		EventID:          inv.EventID,
		AffiliateID:      aff.ID,
		ReferralID:       ref.ID,
		SubscriptionID:   inv.SubscriptionID,
		InvoiceID:        inv.InvoiceID,
		AmountTotal:      amountTotal,
		AmountNet:        amountNet,
		CommissionRate:   aff.CommissionRate,
		CommissionAmount: commissionAmount,
		Status:           types.CommissionStatusPending,
		HoldUntil:        now.Add(commissionHoldPeriod),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	inserted, err := s.CommissionRepo.CreateIfAbsent(ctx, comm)
	if err != nil {
		s.Logger.Errorw("failed to insert commission",
			"error", err,
			"event_id", inv.EventID,
			"invoice_id", inv.InvoiceID,
		)
		return err
	}
	if !inserted {
		// A concurrent delivery of the same event won the insert; the
		// winner also owns the lifetime value increment
		s.Logger.Infow("commission insert lost to concurrent duplicate",
			"event_id", inv.EventID,
		)
		return nil
	}

	if err := s.ReferralRepo.IncrementLifetimeValue(ctx, ref.ID, amountTotal); err != nil {
		s.Logger.Errorw("failed to increment referral lifetime value",
			"error", err,
			"referral_id", ref.ID,
		)
		return err
	}

	s.Logger.Infow("commission recorded",
		"commission_id", comm.ID,
		"event_id", inv.EventID,
		"invoice_id", inv.InvoiceID,
		"affiliate_id", aff.ID,
		"amount", commissionAmount,
	)

	return nil
}

func (s *commissionService) HandleChargeRefunded(ctx context.Context, ch *RefundedCharge) error {
	if ch.InvoiceID == "" {
		// Refunds on non-invoice charges are out of scope
		s.Logger.Debugw("refunded charge not tied to an invoice, skipping",
			"charge_id", ch.ChargeID,
		)
		return nil
	}

	orig, err := s.CommissionRepo.GetOriginalByInvoiceID(ctx, ch.InvoiceID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Infow("no commission for refunded invoice",
				"invoice_id", ch.InvoiceID,
			)
			return nil
		}
		return err
	}

	if orig.Status == types.CommissionStatusReversed {
		s.Logger.Infow("commission already reversed",
			"commission_id", orig.ID,
			"invoice_id", ch.InvoiceID,
		)
		return nil
	}

	if err := s.CommissionRepo.UpdateStatus(ctx, orig.ID, types.CommissionStatusReversed); err != nil {
		s.Logger.Errorw("failed to reverse commission",
			"error", err,
			"commission_id", orig.ID,
		)
		return err
	}

	now := time.Now().UTC()
	reversal := &commission.Commission{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMMISSION),
		EventID:          refundEventPrefix + ch.EventID,
		AffiliateID:      orig.AffiliateID,
		ReferralID:       orig.ReferralID,
		SubscriptionID:   orig.SubscriptionID,
		InvoiceID:        orig.InvoiceID,
		AmountTotal:      orig.AmountTotal.Neg(),
		AmountNet:        orig.AmountNet.Neg(),
		CommissionRate:   decimal.Zero,
		CommissionAmount: orig.CommissionAmount.Neg(),
		Status:           types.CommissionStatusReversed,
		// A reversal is final immediately, no hold period
		HoldUntil: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	inserted, err := s.CommissionRepo.CreateIfAbsent(ctx, reversal)
	if err != nil {
		s.Logger.Errorw("failed to insert compensating commission row",
			"error", err,
			"event_id", reversal.EventID,
			"invoice_id", ch.InvoiceID,
		)
		return err
	}
	if !inserted {
		s.Logger.Infow("compensating row already exists",
			"event_id", reversal.EventID,
		)
		return nil
	}

	s.Logger.Infow("commission reversed",
		"commission_id", orig.ID,
		"reversal_id", reversal.ID,
		"invoice_id", ch.InvoiceID,
	)

	return nil
}
