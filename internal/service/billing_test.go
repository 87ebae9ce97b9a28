package service

import (
	"testing"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/account"
	"github.com/mietwerk/billing-core/internal/domain/billing"
	"github.com/mietwerk/billing-core/internal/testutil"
	"github.com/mietwerk/billing-core/internal/types"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     BillingService
	billingRepo *testutil.InMemoryBillingStore
	accountRepo *testutil.InMemoryAccountStore
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.billingRepo = s.GetStores().BillingRepo.(*testutil.InMemoryBillingStore)
	s.accountRepo = s.GetStores().AccountRepo.(*testutil.InMemoryAccountStore)

	s.service = NewBillingService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		BillingRepo: s.GetStores().BillingRepo,
		AccountRepo: s.GetStores().AccountRepo,
	})
}

func (s *BillingServiceSuite) seedLinkedAccount(accountID, customerID string) {
	s.billingRepo.Seed(s.GetContext(), &billing.Info{
		AccountID:  accountID,
		CustomerID: &customerID,
		Plan:       types.PlanFree,
		Status:     types.BillingStatusInactive,
	})
}

func (s *BillingServiceSuite) TestResolvesDirectlyByCustomerID() {
	s.seedLinkedAccount("acct_1", "cus_123")

	outcome, err := s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: "cus_123",
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)
	s.Equal(billing.ResolvedDirect, outcome)

	info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Equal(types.PlanPro, info.Plan)
	s.Equal(types.BillingStatusActive, info.Status)
	s.NotNil(info.ProActivatedAt)
}

func (s *BillingServiceSuite) TestResolvesViaMappingAndBackfills() {
	s.billingRepo.Seed(s.GetContext(), &billing.Info{
		AccountID: "acct_1",
		Plan:      types.PlanFree,
		Status:    types.BillingStatusInactive,
	})
	s.accountRepo.Seed(s.GetContext(), &account.CustomerMapping{
		CustomerID: "cus_123",
		AccountID:  "acct_1",
	})

	outcome, err := s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: "cus_123",
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)
	s.Equal(billing.ResolvedViaMapping, outcome)

	// The direct link is backfilled so the next event resolves directly
	info, err := s.billingRepo.GetByCustomerID(s.GetContext(), "cus_123")
	s.NoError(err)
	s.Equal("acct_1", info.AccountID)

	outcome, err = s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: "cus_123",
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)
	s.Equal(billing.ResolvedDirect, outcome)
}

func (s *BillingServiceSuite) TestUnknownCustomerIsNotAnError() {
	outcome, err := s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: "cus_unknown",
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)
	s.Equal(billing.ResolveNotFound, outcome)
}

func (s *BillingServiceSuite) TestProActivatedAtIsAOneWayLatch() {
	s.seedLinkedAccount("acct_1", "cus_123")

	_, err := s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: "cus_123",
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)

	info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Require().NotNil(info.ProActivatedAt)
	firstActivation := *info.ProActivatedAt

	// Demote, then re-activate; the first activation timestamp survives
	_, err = s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: "cus_123",
		Plan:       types.PlanFree,
		Status:     types.BillingStatusInactive,
	})
	s.NoError(err)

	_, err = s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: "cus_123",
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)

	info, err = s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Require().NotNil(info.ProActivatedAt)
	s.True(firstActivation.Equal(*info.ProActivatedAt))
}

func (s *BillingServiceSuite) TestTrialsClearedOnlyWhenPaidActive() {
	customerID := "cus_123"
	trialStart := s.GetNow().Add(-7 * 24 * time.Hour)
	trialEnd := s.GetNow().Add(7 * 24 * time.Hour)
	s.billingRepo.Seed(s.GetContext(), &billing.Info{
		AccountID:     "acct_1",
		CustomerID:    &customerID,
		Plan:          types.PlanFree,
		Status:        types.BillingStatusInactive,
		TrialStartsAt: &trialStart,
		TrialEndsAt:   &trialEnd,
	})

	// A demotion leaves the trial bookkeeping alone
	_, err := s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: customerID,
		Plan:       types.PlanFree,
		Status:     types.BillingStatusInactive,
	})
	s.NoError(err)

	info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.NotNil(info.TrialStartsAt)
	s.NotNil(info.TrialEndsAt)

	// Going paid-active clears both
	_, err = s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: customerID,
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)

	info, err = s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Nil(info.TrialStartsAt)
	s.Nil(info.TrialEndsAt)
}

func (s *BillingServiceSuite) TestEndsAtTriState() {
	customerID := "cus_123"
	endsAt := s.GetNow().Add(30 * 24 * time.Hour)
	s.seedLinkedAccount("acct_1", customerID)

	// Set an explicit value
	_, err := s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: customerID,
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
		EndsAt:     EndsAtUpdate{Set: true, Value: &endsAt},
	})
	s.NoError(err)

	info, err := s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Require().NotNil(info.SubscriptionEndsAt)
	s.True(endsAt.Equal(*info.SubscriptionEndsAt))

	// Omitting the value leaves it unchanged
	_, err = s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: customerID,
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
	})
	s.NoError(err)

	info, err = s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.NotNil(info.SubscriptionEndsAt)

	// An explicit nil clears it
	_, err = s.service.ApplySubscriptionState(s.GetContext(), &BillingUpdate{
		CustomerID: customerID,
		Plan:       types.PlanPro,
		Status:     types.BillingStatusActive,
		EndsAt:     EndsAtUpdate{Set: true, Value: nil},
	})
	s.NoError(err)

	info, err = s.billingRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Nil(info.SubscriptionEndsAt)
}
