package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/bookings"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/config"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
)

// Service creates Stripe checkout sessions and refunds for bookings. Amounts
// are in yen; JPY is zero-decimal so no unit conversion happens.
type Service struct {
	stripe     StripeCheckoutClient
	successURL string
	cancelURL  string
	defaultExp int
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the payment service.
func NewService(client StripeCheckoutClient, cfg config.StripeConfig, defaultExpiryHours int, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if defaultExpiryHours <= 0 {
		defaultExpiryHours = 24
	}
	return &Service{
		stripe:     client,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		defaultExp: defaultExpiryHours,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// CreateSession opens a checkout session for the booking's outstanding
// amount. The organization's expiry window bounds how long the link lives.
func (s *Service) CreateSession(ctx context.Context, booking *models.Booking, org *models.Organization) (*bookings.CheckoutSession, error) {
	if booking == nil || org == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking and organization required")
	}
	if !org.PaymentEnabled {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "online payment is not enabled for this organization")
	}

	amount := booking.TotalPrice - booking.Discount
	if booking.FinalAmount != nil {
		amount = *booking.FinalAmount
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to collect for this booking")
	}

	expiryHours := org.CheckoutExpiryHours
	if expiryHours <= 0 {
		expiryHours = s.defaultExp
	}
	expiresAt := s.now().UTC().Add(time.Duration(expiryHours) * time.Hour)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyJPY)),
				UnitAmount: stripe.Int64(int64(amount)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s booking %s %s", org.Name, booking.SelectedDate, booking.SelectedTime)),
				},
			},
		}},
		ExpiresAt: stripe.Int64(expiresAt.Unix()),
		Metadata: map[string]string{
			"booking_id":      booking.ID.String(),
			"organization_id": booking.OrganizationID.String(),
		},
	}
	if s.successURL != "" {
		params.SuccessURL = stripe.String(fmt.Sprintf("%s?booking_id=%s", s.successURL, booking.ID))
	}
	if s.cancelURL != "" {
		params.CancelURL = stripe.String(fmt.Sprintf("%s?booking_id=%s", s.cancelURL, booking.ID))
	}

	created, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	s.logg.Info(s.logg.WithBookingID(ctx, booking.ID.String()), "checkout session created")
	return &bookings.CheckoutSession{
		SessionID: created.ID,
		URL:       created.URL,
		ExpiresAt: expiresAt,
		Amount:    amount,
	}, nil
}

// ExpireSession invalidates a still-open checkout session, used when a new
// link replaces an old one.
func (s *Service) ExpireSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if _, err := s.stripe.ExpireCheckoutSession(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire checkout session")
	}
	return nil
}

// Refund returns the collected amount for a paid booking.
func (s *Service) Refund(ctx context.Context, paymentIntentID string, amount int) error {
	if paymentIntentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id required")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(int64(amount)),
	}
	if _, err := s.stripe.CreateRefund(ctx, params); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
	}
	return nil
}
