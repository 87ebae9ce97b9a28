package pg

import (
	"context"
	"errors"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/subscription"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewSubscriptionRepository creates a postgres-backed snapshot repository
func NewSubscriptionRepository(db *gorm.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, snapshot *subscription.Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			UpdateAll: true,
		}).
		Create(snapshot).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert subscription snapshot").
			WithReportableDetails(map[string]any{
				"customer_id": snapshot.CustomerID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Snapshot, error) {
	var snapshot subscription.Snapshot
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("subscription snapshot not found").
				WithHintf("No snapshot for customer %s", customerID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription snapshot").
			Mark(ierr.ErrDatabase)
	}
	return &snapshot, nil
}
