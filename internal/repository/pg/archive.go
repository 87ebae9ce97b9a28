package pg

import (
	"context"
	"errors"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/archive"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type archiveRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewArchiveRepository creates a postgres-backed invoice archive repository
func NewArchiveRepository(db *gorm.DB, logger *logger.Logger) archive.Repository {
	return &archiveRepository{db: db, logger: logger}
}

func (r *archiveRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*archive.InvoiceArchive, error) {
	var row archive.InvoiceArchive
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("invoice archive not found").
				WithHintf("No archive row for invoice %s", invoiceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice archive").
			Mark(ierr.ErrDatabase)
	}
	return &row, nil
}

func (r *archiveRepository) Upsert(ctx context.Context, row *archive.InvoiceArchive) error {
	row.UpdatedAt = time.Now().UTC()

	// the PDF cache columns are owned by MarkPDFCached and must survive
	// the overwrite of the provider-sourced columns
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "invoice_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"customer_id", "number", "status", "currency",
				"total", "tax", "subtotal",
				"created_at", "period_start", "period_end",
				"customer_email", "customer_name",
				"hosted_invoice_url", "pdf_url",
				"raw_summary", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert invoice archive").
			WithReportableDetails(map[string]any{
				"invoice_id": row.InvoiceID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *archiveRepository) MarkPDFCached(ctx context.Context, invoiceID, storagePath string, cachedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&archive.InvoiceArchive{}).
		Where("invoice_id = ?", invoiceID).
		Updates(map[string]any{
			"pdf_storage_path": storagePath,
			"pdf_cached_at":    cachedAt,
		}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to mark invoice PDF as cached").
			WithReportableDetails(map[string]any{
				"invoice_id":   invoiceID,
				"storage_path": storagePath,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
