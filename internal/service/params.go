package service

import (
	"context"

	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/domain/account"
	"github.com/mietwerk/billing-core/internal/domain/affiliate"
	"github.com/mietwerk/billing-core/internal/domain/archive"
	"github.com/mietwerk/billing-core/internal/domain/billing"
	"github.com/mietwerk/billing-core/internal/domain/commission"
	"github.com/mietwerk/billing-core/internal/domain/order"
	"github.com/mietwerk/billing-core/internal/domain/referral"
	"github.com/mietwerk/billing-core/internal/domain/subscription"
	"github.com/mietwerk/billing-core/internal/httpclient"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/s3"
	"github.com/stripe/stripe-go/v82"
)

// SubscriptionGateway is the slice of the Stripe API the synchronizer
// needs; the real client implements it and tests substitute a fake.
type SubscriptionGateway interface {
	// LatestSubscription returns the customer's most recent subscription
	// with the default payment method expanded, or nil when none exists
	LatestSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error)
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	SubscriptionRepo subscription.Repository
	BillingRepo      billing.Repository
	AccountRepo      account.Repository
	ReferralRepo     referral.Repository
	AffiliateRepo    affiliate.Repository
	CommissionRepo   commission.Repository
	ArchiveRepo      archive.Repository
	OrderRepo        order.Repository

	// External collaborators
	Stripe SubscriptionGateway
	Client httpclient.Client
	S3     s3.Service
}

// NewServiceParams assembles the shared dependency bundle
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	subscriptionRepo subscription.Repository,
	billingRepo billing.Repository,
	accountRepo account.Repository,
	referralRepo referral.Repository,
	affiliateRepo affiliate.Repository,
	commissionRepo commission.Repository,
	archiveRepo archive.Repository,
	orderRepo order.Repository,
	stripeGateway SubscriptionGateway,
	client httpclient.Client,
	s3Service s3.Service,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		SubscriptionRepo: subscriptionRepo,
		BillingRepo:      billingRepo,
		AccountRepo:      accountRepo,
		ReferralRepo:     referralRepo,
		AffiliateRepo:    affiliateRepo,
		CommissionRepo:   commissionRepo,
		ArchiveRepo:      archiveRepo,
		OrderRepo:        orderRepo,
		Stripe:           stripeGateway,
		Client:           client,
		S3:               s3Service,
	}
}
