package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pay2u-app/pay2u-backend/api/routes"
	"github.com/pay2u-app/pay2u-backend/internal/billing"
	"github.com/pay2u-app/pay2u-backend/internal/cashback"
	"github.com/pay2u-app/pay2u-backend/internal/catalog"
	"github.com/pay2u-app/pay2u-backend/internal/notifications"
	"github.com/pay2u-app/pay2u-backend/internal/promocodes"
	"github.com/pay2u-app/pay2u-backend/internal/ratings"
	"github.com/pay2u-app/pay2u-backend/internal/subscriptions"
	"github.com/pay2u-app/pay2u-backend/pkg/config"
	"github.com/pay2u-app/pay2u-backend/pkg/db"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
	"github.com/pay2u-app/pay2u-backend/pkg/migrate"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
	"github.com/pay2u-app/pay2u-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), int64(cfg.Catalog.PopularThreshold))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())
	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:    subscriptionsRepo,
		Tx:      dbClient,
		Outbox:  outboxService,
		Catalog: catalogService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	cashbackService, err := cashback.NewService(cashback.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create cashback service", err)
		os.Exit(1)
	}

	billingRepo := billing.NewRepository(dbClient.DB())
	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:        billingRepo,
		Tx:          dbClient,
		Gateway:     billing.NewSimulatedGateway(),
		Lifecycle:   subscriptionsService,
		Cashback:    cashbackService,
		Outbox:      outboxService,
		Catalog:     catalogService,
		Logger:      logg,
		TrialAmount: cfg.Billing.TrialAmount,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	promoService, err := promocodes.NewService(promocodes.ServiceParams{
		Tx:            dbClient,
		Payments:      billingRepo,
		Subscriptions: subscriptionsRepo,
		Outbox:        outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create promo code service", err)
		os.Exit(1)
	}

	ratingsService, err := ratings.NewService(ratings.ServiceParams{
		Repo:   ratings.NewRepository(dbClient.DB()),
		Logger: zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ratings service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			subscriptionsService,
			billingService,
			promoService,
			cashbackService,
			ratingsService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
