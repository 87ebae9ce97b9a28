package service

import (
	"testing"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/billing"
	"github.com/mietwerk/billing-core/internal/testutil"
	"github.com/mietwerk/billing-core/internal/types"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
)

type SubscriptionSyncServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     SubscriptionSyncService
	gateway     *testutil.MockSubscriptionGateway
	subRepo     *testutil.InMemorySubscriptionStore
	billingRepo *testutil.InMemoryBillingStore
}

func TestSubscriptionSyncService(t *testing.T) {
	suite.Run(t, new(SubscriptionSyncServiceSuite))
}

func (s *SubscriptionSyncServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.gateway = testutil.NewMockSubscriptionGateway()
	s.subRepo = s.GetStores().SubscriptionRepo.(*testutil.InMemorySubscriptionStore)
	s.billingRepo = s.GetStores().BillingRepo.(*testutil.InMemoryBillingStore)

	params := ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		SubscriptionRepo: s.GetStores().SubscriptionRepo,
		BillingRepo:      s.GetStores().BillingRepo,
		AccountRepo:      s.GetStores().AccountRepo,
		Stripe:           s.gateway,
	}
	s.service = NewSubscriptionSyncService(params, NewBillingService(params))
}

func (s *SubscriptionSyncServiceSuite) seedBilling(accountID, customerID string) {
	s.billingRepo.Seed(s.GetContext(), &billing.Info{
		AccountID:  accountID,
		CustomerID: &customerID,
		Plan:       types.PlanFree,
		Status:     types.BillingStatusInactive,
	})
}

func (s *SubscriptionSyncServiceSuite) stripeSubscription(status stripe.SubscriptionStatus, cancelAtPeriodEnd bool) *stripe.Subscription {
	periodStart := s.GetNow().Add(-10 * 24 * time.Hour)
	periodEnd := s.GetNow().Add(20 * 24 * time.Hour)

	return &stripe.Subscription{
		ID:                "sub_1",
		Status:            status,
		CancelAtPeriodEnd: cancelAtPeriodEnd,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					Price:              &stripe.Price{ID: "price_pro_monthly"},
					CurrentPeriodStart: periodStart.Unix(),
					CurrentPeriodEnd:   periodEnd.Unix(),
				},
			},
		},
		DefaultPaymentMethod: &stripe.PaymentMethod{
			Card: &stripe.PaymentMethodCard{
				Brand: stripe.PaymentMethodCardBrandVisa,
				Last4: "4242",
			},
		},
	}
}

func (s *SubscriptionSyncServiceSuite) TestSyncActiveSubscription() {
	s.seedBilling("acct_1", "cus_123")
	s.gateway.SetSubscription("cus_123", s.stripeSubscription(stripe.SubscriptionStatusActive, false))

	err := s.service.SyncCustomer(s.GetContext(), "cus_123")
	s.NoError(err)

	snapshot, err := s.subRepo.GetByCustomerID(s.GetContext(), "cus_123")
	s.NoError(err)
	s.Equal("sub_1", snapshot.SubscriptionID)
	s.Equal("price_pro_monthly", snapshot.PriceID)
	s.Equal("active", snapshot.Status)
	s.False(snapshot.CancelAtPeriodEnd)
	s.Require().NotNil(snapshot.CurrentPeriodStart)
	s.Require().NotNil(snapshot.CurrentPeriodEnd)
	s.Require().NotNil(snapshot.PaymentMethodBrand)
	s.Equal("visa", *snapshot.PaymentMethodBrand)
	s.Require().NotNil(snapshot.PaymentMethodLast4)
	s.Equal("4242", *snapshot.PaymentMethodLast4)

	info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Equal(types.PlanPro, info.Plan)
	s.Equal(types.BillingStatusActive, info.Status)
	s.NotNil(info.ProActivatedAt)
	s.Nil(info.SubscriptionEndsAt)
}

func (s *SubscriptionSyncServiceSuite) TestSyncWithoutSubscription() {
	s.seedBilling("acct_1", "cus_123")

	err := s.service.SyncCustomer(s.GetContext(), "cus_123")
	s.NoError(err)

	snapshot, err := s.subRepo.GetByCustomerID(s.GetContext(), "cus_123")
	s.NoError(err)
	s.Equal(types.SubscriptionStatusNotStarted, snapshot.Status)
	s.Empty(snapshot.SubscriptionID)

	info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Equal(types.PlanFree, info.Plan)
	s.Equal(types.BillingStatusInactive, info.Status)
	s.Nil(info.ProActivatedAt)
}

func (s *SubscriptionSyncServiceSuite) TestPlanDerivation() {
	tests := []struct {
		status     stripe.SubscriptionStatus
		wantPlan   types.SubscriptionPlan
		wantStatus types.BillingStatus
	}{
		{stripe.SubscriptionStatusActive, types.PlanPro, types.BillingStatusActive},
		{stripe.SubscriptionStatusTrialing, types.PlanPro, types.BillingStatusActive},
		{stripe.SubscriptionStatusPastDue, types.PlanFree, types.BillingStatusInactive},
		{stripe.SubscriptionStatusCanceled, types.PlanFree, types.BillingStatusInactive},
		{stripe.SubscriptionStatusIncomplete, types.PlanFree, types.BillingStatusInactive},
		{stripe.SubscriptionStatusUnpaid, types.PlanFree, types.BillingStatusInactive},
	}

	for _, tt := range tests {
		s.Run(string(tt.status), func() {
			s.SetupTest()
			s.seedBilling("acct_1", "cus_123")
			s.gateway.SetSubscription("cus_123", s.stripeSubscription(tt.status, false))

			err := s.service.SyncCustomer(s.GetContext(), "cus_123")
			s.NoError(err)

			info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
			s.NoError(err)
			s.Equal(tt.wantPlan, info.Plan)
			s.Equal(tt.wantStatus, info.Status)
		})
	}
}

func (s *SubscriptionSyncServiceSuite) TestEndsAtSetOnlyWhileCanceling() {
	s.seedBilling("acct_1", "cus_123")

	// A scheduled cancellation carries an end date
	sub := s.stripeSubscription(stripe.SubscriptionStatusActive, true)
	s.gateway.SetSubscription("cus_123", sub)
	s.NoError(s.service.SyncCustomer(s.GetContext(), "cus_123"))

	info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Require().NotNil(info.SubscriptionEndsAt)
	wantEnd := time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0).UTC()
	s.True(wantEnd.Equal(*info.SubscriptionEndsAt))

	// Resuming the subscription clears the date again
	s.gateway.SetSubscription("cus_123", s.stripeSubscription(stripe.SubscriptionStatusActive, false))
	s.NoError(s.service.SyncCustomer(s.GetContext(), "cus_123"))

	info, err = s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Nil(info.SubscriptionEndsAt)
}

func (s *SubscriptionSyncServiceSuite) TestPaymentMethodReferenceOnly() {
	s.seedBilling("acct_1", "cus_123")
	sub := s.stripeSubscription(stripe.SubscriptionStatusActive, false)
	// Only a reference id came back, no expanded card details
	sub.DefaultPaymentMethod = &stripe.PaymentMethod{ID: "pm_1"}
	s.gateway.SetSubscription("cus_123", sub)

	s.NoError(s.service.SyncCustomer(s.GetContext(), "cus_123"))

	snapshot, err := s.subRepo.GetByCustomerID(s.GetContext(), "cus_123")
	s.NoError(err)
	s.Nil(snapshot.PaymentMethodBrand)
	s.Nil(snapshot.PaymentMethodLast4)
}
