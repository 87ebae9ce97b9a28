package testutil

import (
	"context"
	"time"

	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/domain/account"
	"github.com/mietwerk/billing-core/internal/domain/affiliate"
	"github.com/mietwerk/billing-core/internal/domain/archive"
	"github.com/mietwerk/billing-core/internal/domain/billing"
	"github.com/mietwerk/billing-core/internal/domain/commission"
	"github.com/mietwerk/billing-core/internal/domain/order"
	"github.com/mietwerk/billing-core/internal/domain/referral"
	"github.com/mietwerk/billing-core/internal/domain/subscription"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	SubscriptionRepo subscription.Repository
	BillingRepo      billing.Repository
	AccountRepo      account.Repository
	ReferralRepo     referral.Repository
	AffiliateRepo    affiliate.Repository
	CommissionRepo   commission.Repository
	ArchiveRepo      archive.Repository
	OrderRepo        order.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.config = config.GetDefaultConfig()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.setupStores()
	s.now = time.Now().UTC()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		BillingRepo:      NewInMemoryBillingStore(),
		AccountRepo:      NewInMemoryAccountStore(),
		ReferralRepo:     NewInMemoryReferralStore(),
		AffiliateRepo:    NewInMemoryAffiliateStore(),
		CommissionRepo:   NewInMemoryCommissionStore(),
		ArchiveRepo:      NewInMemoryArchiveStore(),
		OrderRepo:        NewInMemoryOrderStore(),
	}
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the time captured at test setup
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
