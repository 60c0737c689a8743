package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayuuum/HomeServiceAI-sub000/api/controllers"
	webhookcontrollers "github.com/ayuuum/HomeServiceAI-sub000/api/controllers/webhooks"
	"github.com/ayuuum/HomeServiceAI-sub000/api/middleware"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/availability"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/bookings"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/catalog"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/customers"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/drafts"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/gmv"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/notifications"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/organizations"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/payments"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/config"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pubsub"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/redis"
	pkgstripe "github.com/ayuuum/HomeServiceAI-sub000/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubClient *pubsub.Client,
	orgService organizations.Service,
	catalogService catalog.Service,
	availabilityService availability.Service,
	bookingService bookings.Service,
	customerService customers.Service,
	draftService drafts.Service,
	gmvService gmv.Service,
	notificationService notifications.Service,
	stripeClient *pkgstripe.Client,
	stripeWebhookService *payments.WebhookService,
	stripeWebhookGuard *payments.WebhookGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orgs/{slug}", func(r chi.Router) {
			r.Get("/", controllers.OrgBranding(orgService, logg))
			r.Get("/services", controllers.OrgServices(orgService, catalogService, logg))
			r.Get("/availability", controllers.OrgAvailability(orgService, availabilityService, logg))
			r.Post("/bookings", controllers.CreateBooking(orgService, bookingService, logg))
			r.Route("/draft", func(r chi.Router) {
				r.Get("/", controllers.DraftFetch(orgService, draftService, logg))
				r.Put("/", controllers.DraftSave(orgService, draftService, logg))
				r.Delete("/", controllers.DraftClear(orgService, draftService, logg))
			})
		})

		r.Post("/bookings/{bookingID}/cancel", controllers.CustomerCancelBooking(bookingService, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.AdminListBookings(bookingService, logg))
			r.Post("/", controllers.AdminCreateWalkIn(bookingService, logg))
			r.Get("/{bookingID}", controllers.AdminBookingDetail(bookingService, logg))
			r.Post("/{bookingID}/approve", controllers.AdminApproveBooking(bookingService, logg))
			r.Post("/{bookingID}/cancel", controllers.AdminCancelBooking(bookingService, logg))
			r.Post("/{bookingID}/complete", controllers.AdminCompleteBooking(bookingService, logg))
			r.Post("/{bookingID}/resend-payment-link", controllers.AdminResendPaymentLink(bookingService, logg))
			r.With(middleware.RequireRole("admin", logg)).Post("/{bookingID}/amend", controllers.AdminAmendBooking(bookingService, logg))
			r.Get("/{bookingID}/gmv", controllers.AdminGMVHistory(gmvService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.AdminListCustomers(customerService, logg))
			r.Get("/{customerID}", controllers.AdminCustomerDetail(customerService, logg))
			r.With(middleware.RequireRole("admin", logg)).Post("/merge", controllers.AdminMergeCustomers(customerService, logg))
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.AdminListServices(catalogService, logg))
			r.Post("/", controllers.AdminCreateService(catalogService, logg))
			r.Get("/{serviceID}", controllers.AdminServiceDetail(catalogService, logg))
			r.Put("/{serviceID}", controllers.AdminUpdateService(catalogService, logg))
			r.With(middleware.RequireRole("admin", logg)).Delete("/{serviceID}", controllers.AdminDeleteService(catalogService, logg))
		})

		r.Route("/gmv", func(r chi.Router) {
			r.Get("/", controllers.AdminListGMVEntries(gmvService, logg))
			r.Get("/monthly", controllers.AdminGMVMonthly(gmvService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.AdminListNotifications(notificationService, logg))
			r.Get("/unread-count", controllers.AdminUnreadNotificationCount(notificationService, logg))
			r.Post("/{notificationID}/read", controllers.AdminMarkNotificationRead(notificationService, logg))
			r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(notificationService, logg))
		})

		r.Route("/settings/set-discounts", func(r chi.Router) {
			r.Get("/", controllers.AdminListSetDiscounts(orgService, logg))
			r.With(middleware.RequireRole("admin", logg)).Put("/", controllers.AdminReplaceSetDiscounts(orgService, logg))
		})

		r.Get("/availability", controllers.AdminAvailability(availabilityService, logg))
	})

	return r
}
