package pg

import (
	"context"
	"errors"

	"github.com/mietwerk/billing-core/internal/domain/affiliate"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"gorm.io/gorm"
)

type affiliateRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewAffiliateRepository creates a postgres-backed affiliate repository
func NewAffiliateRepository(db *gorm.DB, logger *logger.Logger) affiliate.Repository {
	return &affiliateRepository{db: db, logger: logger}
}

func (r *affiliateRepository) Get(ctx context.Context, id string) (*affiliate.Affiliate, error) {
	var aff affiliate.Affiliate
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&aff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("affiliate not found").
				WithHintf("No affiliate with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get affiliate").
			Mark(ierr.ErrDatabase)
	}
	return &aff, nil
}
