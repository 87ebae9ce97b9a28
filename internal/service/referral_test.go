package service

import (
	"testing"

	"github.com/mietwerk/billing-core/internal/domain/account"
	"github.com/mietwerk/billing-core/internal/domain/referral"
	"github.com/mietwerk/billing-core/internal/testutil"
	"github.com/mietwerk/billing-core/internal/types"
	"github.com/stretchr/testify/suite"
)

type ReferralServiceSuite struct {
	testutil.BaseServiceTestSuite
	service      ReferralService
	referralRepo *testutil.InMemoryReferralStore
	accountRepo  *testutil.InMemoryAccountStore
}

func TestReferralService(t *testing.T) {
	suite.Run(t, new(ReferralServiceSuite))
}

func (s *ReferralServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.referralRepo = s.GetStores().ReferralRepo.(*testutil.InMemoryReferralStore)
	s.accountRepo = s.GetStores().AccountRepo.(*testutil.InMemoryAccountStore)

	s.service = NewReferralService(ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		ReferralRepo: s.GetStores().ReferralRepo,
		AccountRepo:  s.GetStores().AccountRepo,
	})
}

func (s *ReferralServiceSuite) seedReferral(customerID *string) {
	s.referralRepo.Seed(s.GetContext(), &referral.Referral{
		ID:          "ref_1",
		AffiliateID: "aff_1",
		AccountID:   "acct_1",
		CustomerID:  customerID,
		Status:      types.ReferralStatusRegistered,
	})
}

func (s *ReferralServiceSuite) TestLinksByAccountID() {
	s.seedReferral(nil)

	s.NoError(s.service.LinkCustomer(s.GetContext(), "acct_1", "cus_123"))

	ref, err := s.referralRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Require().NotNil(ref.CustomerID)
	s.Equal("cus_123", *ref.CustomerID)
}

func (s *ReferralServiceSuite) TestResolvesAccountViaMapping() {
	s.seedReferral(nil)
	s.accountRepo.Seed(s.GetContext(), &account.CustomerMapping{
		CustomerID: "cus_123",
		AccountID:  "acct_1",
	})

	s.NoError(s.service.LinkCustomer(s.GetContext(), "", "cus_123"))

	ref, err := s.referralRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Require().NotNil(ref.CustomerID)
	s.Equal("cus_123", *ref.CustomerID)
}

func (s *ReferralServiceSuite) TestFirstWriteWins() {
	existing := "cus_original"
	s.seedReferral(&existing)

	s.NoError(s.service.LinkCustomer(s.GetContext(), "acct_1", "cus_other"))

	ref, err := s.referralRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Require().NotNil(ref.CustomerID)
	s.Equal("cus_original", *ref.CustomerID)
}

func (s *ReferralServiceSuite) TestMissingReferralIsNotAnError() {
	s.NoError(s.service.LinkCustomer(s.GetContext(), "acct_unknown", "cus_123"))
}

func (s *ReferralServiceSuite) TestMissingMappingIsNotAnError() {
	s.seedReferral(nil)
	s.NoError(s.service.LinkCustomer(s.GetContext(), "", "cus_unmapped"))

	ref, err := s.referralRepo.GetByAccountID(s.GetContext(), "acct_1")
	s.NoError(err)
	s.Nil(ref.CustomerID)
}
