package pg

import (
	"context"
	"errors"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/order"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewOrderRepository creates a postgres-backed order repository
func NewOrderRepository(db *gorm.DB, logger *logger.Logger) order.Repository {
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) CreateIfAbsent(ctx context.Context, o *order.Order) (bool, error) {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checkout_session_id"}},
			DoNothing: true,
		}).
		Create(o)
	if res.Error != nil {
		return false, ierr.WithError(res.Error).
			WithHint("Failed to insert order").
			WithReportableDetails(map[string]any{
				"checkout_session_id": o.CheckoutSessionID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepository) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Where("checkout_session_id = ?", sessionID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("order not found").
				WithHintf("No order for checkout session %s", sessionID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get order").
			Mark(ierr.ErrDatabase)
	}
	return &o, nil
}
