package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
)

type expiredBookingReader interface {
	FindExpiredAwaitingPayment(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

type paymentExpirer interface {
	PaymentExpired(ctx context.Context, sessionID string, expiredAt time.Time) error
}

// PaymentExpiryJobParams configure the payment-link expiry sweep.
type PaymentExpiryJobParams struct {
	Logger    *logger.Logger
	Bookings  expiredBookingReader
	Lifecycle paymentExpirer
}

// NewPaymentExpiryJob builds the sweep that cancels bookings whose checkout
// session lapsed without a completed payment. Stripe emits
// checkout.session.expired for these too; the sweep is the backstop for
// webhooks that never arrived.
func NewPaymentExpiryJob(params PaymentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings reader required")
	}
	if params.Lifecycle == nil {
		return nil, fmt.Errorf("lifecycle service required")
	}
	return &paymentExpiryJob{
		logg:      params.Logger,
		bookings:  params.Bookings,
		lifecycle: params.Lifecycle,
		now:       time.Now,
	}, nil
}

type paymentExpiryJob struct {
	logg      *logger.Logger
	bookings  expiredBookingReader
	lifecycle paymentExpirer
	now       func() time.Time
}

func (j *paymentExpiryJob) Name() string { return "payment-expiry" }

func (j *paymentExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	rows, err := j.bookings.FindExpiredAwaitingPayment(ctx, now)
	if err != nil {
		return fmt.Errorf("query expired awaiting-payment bookings: %w", err)
	}

	var errs []error
	expired := 0
	for _, booking := range rows {
		if booking.CheckoutSessionID == nil || *booking.CheckoutSessionID == "" {
			logCtx := j.logg.WithBookingID(ctx, booking.ID.String())
			j.logg.Warn(logCtx, "awaiting-payment booking has no checkout session; skipping")
			continue
		}
		expiredAt := now
		if booking.CheckoutExpiresAt != nil {
			expiredAt = booking.CheckoutExpiresAt.UTC()
		}
		if err := j.lifecycle.PaymentExpired(ctx, *booking.CheckoutSessionID, expiredAt); err != nil {
			errs = append(errs, fmt.Errorf("expire booking %s: %w", booking.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": expired})
	j.logg.Info(logCtx, "payment expiry sweep complete")
	return multierr.Combine(errs...)
}
