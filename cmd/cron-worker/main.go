package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pay2u-app/pay2u-backend/internal/billing"
	"github.com/pay2u-app/pay2u-backend/internal/cashback"
	"github.com/pay2u-app/pay2u-backend/internal/catalog"
	"github.com/pay2u-app/pay2u-backend/internal/cron"
	"github.com/pay2u-app/pay2u-backend/internal/notifications"
	"github.com/pay2u-app/pay2u-backend/internal/subscriptions"
	"github.com/pay2u-app/pay2u-backend/pkg/config"
	"github.com/pay2u-app/pay2u-backend/pkg/db"
	"github.com/pay2u-app/pay2u-backend/pkg/logger"
	"github.com/pay2u-app/pay2u-backend/pkg/metrics"
	"github.com/pay2u-app/pay2u-backend/pkg/migrate"
	"github.com/pay2u-app/pay2u-backend/pkg/outbox"
	"github.com/pay2u-app/pay2u-backend/pkg/redis"
)

const lockKeyFormat = "p2u:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)

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

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:        billing.NewRepository(dbClient.DB()),
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

	reminder, err := notifications.NewReminder(subscriptionsRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expiry reminder", err)
		os.Exit(1)
	}

	lapseJob, err := cron.NewLapseJob(cron.LapseJobParams{
		Logger:        logg,
		Subscriptions: subscriptionsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lapse job", err)
		os.Exit(1)
	}

	renewalJob, err := cron.NewRenewalJob(cron.RenewalJobParams{
		Logger:        logg,
		Subscriptions: subscriptionsRepo,
		Billing:       billingService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create renewal job", err)
		os.Exit(1)
	}

	reminderJob, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger:   logg,
		Reminder: reminder,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder job", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(lapseJob, renewalJob, reminderJob, cleanupJob, retentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
