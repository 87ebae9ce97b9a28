package pg

import (
	"context"
	"errors"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/billing"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"gorm.io/gorm"
)

type billingRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewBillingRepository creates a postgres-backed billing info repository
func NewBillingRepository(db *gorm.DB, logger *logger.Logger) billing.Repository {
	return &billingRepository{db: db, logger: logger}
}

func (r *billingRepository) GetByCustomerID(ctx context.Context, customerID string) (*billing.Info, error) {
	var info billing.Info
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&info).Error
	if err != nil {
		return nil, r.wrapGetErr(err, "customer_id", customerID)
	}
	return &info, nil
}

func (r *billingRepository) GetByAccountID(ctx context.Context, accountID string) (*billing.Info, error) {
	var info billing.Info
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&info).Error
	if err != nil {
		return nil, r.wrapGetErr(err, "account_id", accountID)
	}
	return &info, nil
}

func (r *billingRepository) Update(ctx context.Context, info *billing.Info) error {
	info.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Save(info).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update billing info").
			WithReportableDetails(map[string]any{
				"account_id": info.AccountID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingRepository) wrapGetErr(err error, key, value string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ierr.NewError("billing info not found").
			WithHintf("No billing info with %s %s", key, value).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to get billing info").
		Mark(ierr.ErrDatabase)
}
