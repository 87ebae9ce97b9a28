package pg

import (
	"context"
	"errors"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/referral"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type referralRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewReferralRepository creates a postgres-backed referral repository
func NewReferralRepository(db *gorm.DB, logger *logger.Logger) referral.Repository {
	return &referralRepository{db: db, logger: logger}
}

func (r *referralRepository) GetByCustomerID(ctx context.Context, customerID string) (*referral.Referral, error) {
	var ref referral.Referral
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&ref).Error
	if err != nil {
		return nil, r.wrapGetErr(err, "customer_id", customerID)
	}
	return &ref, nil
}

func (r *referralRepository) GetByAccountID(ctx context.Context, accountID string) (*referral.Referral, error) {
	var ref referral.Referral
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&ref).Error
	if err != nil {
		return nil, r.wrapGetErr(err, "account_id", accountID)
	}
	return &ref, nil
}

func (r *referralRepository) Update(ctx context.Context, ref *referral.Referral) error {
	ref.UpdatedAt = time.Now().UTC()

	// lifetime_value is owned by IncrementLifetimeValue; writing it from
	// the struct would clobber a concurrent increment with a stale read
	err := r.db.WithContext(ctx).
		Omit("lifetime_value", "created_at").
		Save(ref).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update referral").
			WithReportableDetails(map[string]any{
				"referral_id": ref.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *referralRepository) SetCustomerID(ctx context.Context, referralID, customerID string) error {
	// first write wins, rows that already carry a customer id stay as-is
	err := r.db.WithContext(ctx).
		Model(&referral.Referral{}).
		Where("id = ? AND customer_id IS NULL", referralID).
		Updates(map[string]any{
			"customer_id": customerID,
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to set referral customer id").
			WithReportableDetails(map[string]any{
				"referral_id": referralID,
				"customer_id": customerID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *referralRepository) IncrementLifetimeValue(ctx context.Context, referralID string, amount decimal.Decimal) error {
	// atomic increment at the store, not read-modify-write, so two
	// invoices paid close together cannot lose an update
	err := r.db.WithContext(ctx).
		Model(&referral.Referral{}).
		Where("id = ?", referralID).
		UpdateColumn("lifetime_value", gorm.Expr("lifetime_value + ?", amount)).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to increment referral lifetime value").
			WithReportableDetails(map[string]any{
				"referral_id": referralID,
				"amount":      amount.String(),
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *referralRepository) wrapGetErr(err error, key, value string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ierr.NewError("referral not found").
			WithHintf("No referral with %s %s", key, value).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to get referral").
		Mark(ierr.ErrDatabase)
}
