package pg

import (
	"context"
	"errors"

	"github.com/mietwerk/billing-core/internal/domain/account"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"gorm.io/gorm"
)

type accountRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewAccountRepository creates a postgres-backed customer mapping repository
func NewAccountRepository(db *gorm.DB, logger *logger.Logger) account.Repository {
	return &accountRepository{db: db, logger: logger}
}

func (r *accountRepository) GetByCustomerID(ctx context.Context, customerID string) (*account.CustomerMapping, error) {
	var mapping account.CustomerMapping
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("customer mapping not found").
				WithHintf("No account mapped to customer %s", customerID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer mapping").
			Mark(ierr.ErrDatabase)
	}
	return &mapping, nil
}
