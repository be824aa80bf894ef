package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pay2u-app/pay2u-backend/api/controllers"
	"github.com/pay2u-app/pay2u-backend/api/middleware"
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
	"github.com/pay2u-app/pay2u-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	subscriptionsService subscriptions.Service,
	billingService billing.Service,
	promoService promocodes.Service,
	cashbackService cashback.Service,
	ratingsService ratings.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	// The catalog is browsable without a token.
	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(catalogService, logg))
		r.Get("/{categoryId}", controllers.GetCategory(catalogService, logg))
	})

	r.Route("/api/v1/services", func(r chi.Router) {
		r.Get("/", controllers.ListServices(catalogService, logg))
		r.Get("/new", controllers.ListNewServices(catalogService, logg))
		r.Get("/popular", controllers.ListPopularServices(catalogService, logg))
		r.Get("/{serviceId}", controllers.GetService(catalogService, logg))
		r.Get("/{serviceId}/tariffs", controllers.ListServiceTariffs(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Post("/{serviceId}/subscribe", controllers.Subscribe(subscriptionsService, logg))
			r.Post("/{serviceId}/rating", controllers.RateService(ratingsService, logg))
			r.Put("/{serviceId}/rating", controllers.RateService(ratingsService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Post("/subscription_payment", controllers.CreateSubscriptionPayment(billingService, logg))
		r.Post("/subscription_paid", controllers.ConfirmSubscriptionPaid(promoService, logg))
		r.Get("/payments", controllers.ListPayments(billingService, logg))

		r.Route("/cashbacks", func(r chi.Router) {
			r.Get("/", controllers.ListCashbacks(cashbackService, logg))
			r.Get("/balance", controllers.GetCashbackBalance(cashbackService, logg))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", controllers.ListSubscriptions(subscriptionsService, logg))
			r.Get("/{subscriptionId}", controllers.GetSubscription(subscriptionsService, logg))
			r.Delete("/{subscriptionId}", controllers.Unsubscribe(subscriptionsService, logg))
			r.Patch("/{subscriptionId}/change_tariff", controllers.ChangeTariff(subscriptionsService, logg))
			r.Patch("/{subscriptionId}/autopayment", controllers.SetAutopayment(subscriptionsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
