package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
)

type bookingLifecycle interface {
	PaymentCompleted(ctx context.Context, sessionID string, paidAt time.Time) error
	PaymentExpired(ctx context.Context, sessionID string, expiredAt time.Time) error
}

// WebhookService routes verified Stripe events into the booking lifecycle.
type WebhookService struct {
	bookings bookingLifecycle
	logg     *logger.Logger
	now      func() time.Time
}

// NewWebhookService builds the webhook router.
func NewWebhookService(bookings bookingLifecycle, logg *logger.Logger) (*WebhookService, error) {
	if bookings == nil {
		return nil, fmt.Errorf("booking lifecycle required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &WebhookService{bookings: bookings, logg: logg, now: time.Now}, nil
}

// HandleEvent processes one verified event. Unknown event types are ignored
// so Stripe does not retry them forever.
func (s *WebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		paidAt := time.Unix(event.Created, 0).UTC()
		return s.bookings.PaymentCompleted(ctx, session.ID, paidAt)
	case stripe.EventTypeCheckoutSessionExpired:
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		expiredAt := s.now().UTC()
		if session.ExpiresAt > 0 {
			expiredAt = time.Unix(session.ExpiresAt, 0).UTC()
		}
		return s.bookings.PaymentExpired(ctx, session.ID, expiredAt)
	default:
		s.logg.Info(ctx, fmt.Sprintf("ignoring stripe event %s", event.Type))
		return nil
	}
}

func decodeSession(event *stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	if session.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}
	return &session, nil
}
