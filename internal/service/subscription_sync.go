package service

import (
	"context"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/subscription"
	"github.com/mietwerk/billing-core/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// SubscriptionSyncService pulls a customer's current subscription state
// from Stripe, persists a normalized snapshot, and forwards the derived
// plan/status pair to the billing service.
type SubscriptionSyncService interface {
	SyncCustomer(ctx context.Context, customerID string) error
}

type subscriptionSyncService struct {
	ServiceParams
	billingService BillingService
}

// NewSubscriptionSyncService creates a new subscription sync service
func NewSubscriptionSyncService(params ServiceParams, billingService BillingService) SubscriptionSyncService {
	return &subscriptionSyncService{
		ServiceParams:  params,
		billingService: billingService,
	}
}

func (s *subscriptionSyncService) SyncCustomer(ctx context.Context, customerID string) error {
	sub, err := s.Stripe.LatestSubscription(ctx, customerID)
	if err != nil {
		s.Logger.Errorw("failed to fetch subscription from Stripe",
			"error", err,
			"customer_id", customerID,
		)
		return err
	}

	if sub == nil {
		return s.syncWithoutSubscription(ctx, customerID)
	}

	snapshot := s.buildSnapshot(customerID, sub)
	if err := s.SubscriptionRepo.Upsert(ctx, snapshot); err != nil {
		s.Logger.Errorw("failed to upsert subscription snapshot",
			"error", err,
			"customer_id", customerID,
			"subscription_id", snapshot.SubscriptionID,
		)
		return err
	}

	plan, status := types.DerivePlanAndStatus(snapshot.Status)

	// The end date exists only while a cancellation is scheduled; a
	// renewing subscription explicitly clears any stored date
	var endsAt *time.Time
	if snapshot.CancelAtPeriodEnd {
		endsAt = snapshot.CurrentPeriodEnd
	}

	_, err = s.billingService.ApplySubscriptionState(ctx, &BillingUpdate{
		CustomerID: customerID,
		Plan:       plan,
		Status:     status,
		EndsAt:     EndsAtUpdate{Set: true, Value: endsAt},
	})
	return err
}

// syncWithoutSubscription records that the customer has no subscription
// at all, which still demotes the account to free/inactive
func (s *subscriptionSyncService) syncWithoutSubscription(ctx context.Context, customerID string) error {
	snapshot := &subscription.Snapshot{
		CustomerID: customerID,
		Status:     types.SubscriptionStatusNotStarted,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.SubscriptionRepo.Upsert(ctx, snapshot); err != nil {
		s.Logger.Errorw("failed to upsert empty subscription snapshot",
			"error", err,
			"customer_id", customerID,
		)
		return err
	}

	_, err := s.billingService.ApplySubscriptionState(ctx, &BillingUpdate{
		CustomerID: customerID,
		Plan:       types.PlanFree,
		Status:     types.BillingStatusInactive,
	})
	return err
}

func (s *subscriptionSyncService) buildSnapshot(customerID string, sub *stripe.Subscription) *subscription.Snapshot {
	snapshot := &subscription.Snapshot{
		CustomerID:        customerID,
		SubscriptionID:    sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		UpdatedAt:         time.Now().UTC(),
	}

	// The billing period lives on the subscription items in the current
	// Stripe API
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			snapshot.PriceID = item.Price.ID
		}
		if item.CurrentPeriodStart > 0 {
			start := time.Unix(item.CurrentPeriodStart, 0).UTC()
			snapshot.CurrentPeriodStart = &start
		}
		if item.CurrentPeriodEnd > 0 {
			end := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			snapshot.CurrentPeriodEnd = &end
		}
	}

	// Card details are available only when the expansion returned the
	// full payment method, not a bare reference id
	if pm := sub.DefaultPaymentMethod; pm != nil && pm.Card != nil {
		brand := string(pm.Card.Brand)
		last4 := pm.Card.Last4
		snapshot.PaymentMethodBrand = &brand
		snapshot.PaymentMethodLast4 = &last4
	}

	return snapshot
}
