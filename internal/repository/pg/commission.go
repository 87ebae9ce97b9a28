package pg

import (
	"context"
	"errors"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/commission"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type commissionRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewCommissionRepository creates a postgres-backed commission repository
func NewCommissionRepository(db *gorm.DB, logger *logger.Logger) commission.Repository {
	return &commissionRepository{db: db, logger: logger}
}

func (r *commissionRepository) GetByEventID(ctx context.Context, eventID string) (*commission.Commission, error) {
	var c commission.Commission
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("commission not found").
				WithHintf("No commission for event %s", eventID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get commission by event id").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *commissionRepository) GetOriginalByInvoiceID(ctx context.Context, invoiceID string) (*commission.Commission, error) {
	// the earliest row for the invoice is the original commission;
	// compensating reversal rows are inserted later
	var c commission.Commission
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at asc").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("commission not found").
				WithHintf("No commission for invoice %s", invoiceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get commission by invoice id").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *commissionRepository) CreateIfAbsent(ctx context.Context, c *commission.Commission) (bool, error) {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	// ON CONFLICT (event_id) DO NOTHING makes duplicate webhook delivery
	// safe even when two deliveries race past the read check
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(c)
	if res.Error != nil {
		return false, ierr.WithError(res.Error).
			WithHint("Failed to insert commission").
			WithReportableDetails(map[string]any{
				"event_id":   c.EventID,
				"invoice_id": c.InvoiceID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return res.RowsAffected > 0, nil
}

func (r *commissionRepository) UpdateStatus(ctx context.Context, id string, status types.CommissionStatus) error {
	err := r.db.WithContext(ctx).
		Model(&commission.Commission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update commission status").
			WithReportableDetails(map[string]any{
				"commission_id": id,
				"status":        string(status),
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *commissionRepository) ListByInvoiceID(ctx context.Context, invoiceID string) ([]*commission.Commission, error) {
	var rows []*commission.Commission
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list commissions by invoice id").
			Mark(ierr.ErrDatabase)
	}
	return rows, nil
}
