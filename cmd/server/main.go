package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mietwerk/billing-core/internal/api"
	v1 "github.com/mietwerk/billing-core/internal/api/v1"
	"github.com/mietwerk/billing-core/internal/config"
	"github.com/mietwerk/billing-core/internal/httpclient"
	"github.com/mietwerk/billing-core/internal/logger"
	"github.com/mietwerk/billing-core/internal/postgres"
	pubsubRouter "github.com/mietwerk/billing-core/internal/pubsub/router"
	"github.com/mietwerk/billing-core/internal/repository/pg"
	"github.com/mietwerk/billing-core/internal/s3"
	"github.com/mietwerk/billing-core/internal/service"
	"github.com/mietwerk/billing-core/internal/stripe"
	"github.com/mietwerk/billing-core/internal/webhook"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewClient,

			// Stripe
			stripe.NewClient,
			provideSubscriptionGateway,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Object storage
			s3.NewService,

			// Repositories
			pg.NewSubscriptionRepository,
			pg.NewBillingRepository,
			pg.NewAccountRepository,
			pg.NewReferralRepository,
			pg.NewAffiliateRepository,
			pg.NewCommissionRepository,
			pg.NewArchiveRepository,
			pg.NewOrderRepository,

			// Message router
			pubsubRouter.NewRouter,
		),
	)

	// Webhook queue, publisher and processor
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewBillingService,
			service.NewSubscriptionSyncService,
			service.NewCommissionService,
			service.NewArchiveService,
			service.NewOrderService,
			service.NewReferralService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			v1.NewWebhookHandler,
			v1.NewHealthHandler,
			api.NewHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			runMigrations,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideSubscriptionGateway(client *stripe.Client) service.SubscriptionGateway {
	return client
}

func runMigrations(db *gorm.DB, log *logger.Logger) error {
	if err := postgres.Migrate(db); err != nil {
		log.Errorw("failed to run database migrations", "error", err)
		return err
	}
	return nil
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	processor webhook.Processor,
	publisher webhook.Publisher,
	log *logger.Logger,
) {
	startAPIServer(lc, r, cfg, log)
	startMessageRouter(lc, router, processor, publisher, log)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	processor webhook.Processor,
	publisher webhook.Publisher,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			processor.RegisterHandler(router)
			go func() {
				if err := router.Run(); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("closing message router...")
			if err := router.Close(); err != nil {
				log.Errorw("failed to close message router", "error", err)
			}
			return publisher.Close()
		},
	})
}
