package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayuuum/HomeServiceAI-sub000/api/routes"
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
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/migrate"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pubsub"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/redis"
	pkgstripe "github.com/ayuuum/HomeServiceAI-sub000/pkg/stripe"
)

const (
	webhookGuardTTL   = 7 * 24 * time.Hour
	webhookGuardScope = "stripe-webhook"
	shutdownGrace     = 15 * time.Second
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

	cfg.Service.Kind = "api"

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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	gdb := dbClient.DB()

	orgService, err := organizations.NewService(organizations.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to build organizations service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build catalog service", err)
		os.Exit(1)
	}
	availabilityService, err := availability.NewService(availability.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to build availability service", err)
		os.Exit(1)
	}
	customerService, err := customers.NewService(customers.NewRepository(gdb), organizations.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build customers service", err)
		os.Exit(1)
	}
	draftService, err := drafts.NewService(redisClient, cfg.Booking.DraftTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to build draft service", err)
		os.Exit(1)
	}
	gmvService, err := gmv.NewService(gmv.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to build gmv service", err)
		os.Exit(1)
	}
	notificationService, err := notifications.NewService(notifications.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to build notifications service", err)
		os.Exit(1)
	}

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}
	paymentService, err := payments.NewService(payments.NewStripeClient(stripeClient), cfg.Stripe, cfg.Booking.DefaultCheckoutExpiry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build payment service", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(
		bookings.NewRepository(gdb),
		bookings.NewCatalogReader(catalog.NewRepository(gdb)),
		customerService,
		outbox.NewService(outbox.NewRepository(gdb), logg),
		draftService,
		gmv.NewRepository(gdb),
		paymentService,
		orgService,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build booking service", err)
		os.Exit(1)
	}

	webhookService, err := payments.NewWebhookService(bookingService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := payments.NewWebhookGuard(redisClient, webhookGuardTTL, webhookGuardScope)
	if err != nil {
		logg.Error(context.Background(), "failed to build webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubClient,
			orgService,
			catalogService,
			availabilityService,
			bookingService,
			customerService,
			draftService,
			gmvService,
			notificationService,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
