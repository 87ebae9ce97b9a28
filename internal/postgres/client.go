package postgres

import (
	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/domain/account"
	"github.com/mietwerk/billing-core/internal/domain/affiliate"
	"github.com/mietwerk/billing-core/internal/domain/archive"
	"github.com/mietwerk/billing-core/internal/domain/billing"
	"github.com/mietwerk/billing-core/internal/domain/commission"
	"github.com/mietwerk/billing-core/internal/domain/order"
	"github.com/mietwerk/billing-core/internal/domain/referral"
	"github.com/mietwerk/billing-core/internal/domain/subscription"
	ierr "github.com/mietwerk/billing-core/internal/errors"
	"github.com/mietwerk/billing-core/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewClient opens the postgres connection used by all repositories
func NewClient(cfg *config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"database", cfg.Postgres.DBName,
	)
	return db, nil
}

// Migrate creates or updates the schema for all tables this core owns.
// The unique index on commissions.event_id is what makes the duplicate
// commission check safe under concurrent redelivery.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&subscription.Snapshot{},
		&billing.Info{},
		&account.CustomerMapping{},
		&referral.Referral{},
		&affiliate.Affiliate{},
		&commission.Commission{},
		&archive.InvoiceArchive{},
		&order.Order{},
	)
}
