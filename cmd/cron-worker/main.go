package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/bookings"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/catalog"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/cron"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/customers"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/drafts"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/gmv"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/organizations"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/payments"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/config"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/metrics"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/migrate"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/redis"
	pkgstripe "github.com/ayuuum/HomeServiceAI-sub000/pkg/stripe"
)

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

	bookingService, err := buildBookingService(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build booking service", err)
		os.Exit(1)
	}

	bookingRepo := bookings.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	expiryJob, err := cron.NewPaymentExpiryJob(cron.PaymentExpiryJobParams{
		Logger:    logg,
		Bookings:  bookingRepo,
		Lifecycle: bookingService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build payment expiry job", err)
		os.Exit(1)
	}
	reminderJob, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger:    logg,
		DB:        dbClient,
		Bookings:  bookingRepo,
		Outbox:    outboxService,
		LeadHours: cfg.Booking.ReminderLeadHours,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build reminder job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, reminderJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
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

func buildBookingService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (bookings.Service, error) {
	gdb := dbClient.DB()

	orgsService, err := organizations.NewService(organizations.NewRepository(gdb))
	if err != nil {
		return nil, err
	}
	customerService, err := customers.NewService(customers.NewRepository(gdb), organizations.NewRepository(gdb), dbClient)
	if err != nil {
		return nil, err
	}
	draftService, err := drafts.NewService(redisClient, cfg.Booking.DraftTTL)
	if err != nil {
		return nil, err
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		return nil, err
	}
	paymentService, err := payments.NewService(payments.NewStripeClient(stripeClient), cfg.Stripe, cfg.Booking.DefaultCheckoutExpiry, logg)
	if err != nil {
		return nil, err
	}

	return bookings.NewService(
		bookings.NewRepository(gdb),
		bookings.NewCatalogReader(catalog.NewRepository(gdb)),
		customerService,
		outbox.NewService(outbox.NewRepository(gdb), logg),
		draftService,
		gmv.NewRepository(gdb),
		paymentService,
		orgsService,
		dbClient,
		logg,
	)
}
