package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox/payloads"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/sendgrid"
)

type bookingReader interface {
	FindAnyByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
}

type customerReader interface {
	FindByID(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error)
}

type organizationReader interface {
	ByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

type linePusher interface {
	PushText(ctx context.Context, accessToken, lineUserID string, texts ...string) error
}

type emailSender interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

// Dispatcher delivers customer notifications over the hybrid channel chain:
// LINE when the customer is linked and the organization has a channel token,
// email as the fallback, and a feed-only record when neither applies. Every
// dispatch writes an in-app feed row regardless of delivery outcome.
type Dispatcher struct {
	repo      Repository
	bookings  bookingReader
	customers customerReader
	orgs      organizationReader
	line      linePusher
	email     emailSender
	logg      *logger.Logger
}

// DispatcherParams wires the dispatcher dependencies.
type DispatcherParams struct {
	Repo      Repository
	Bookings  bookingReader
	Customers customerReader
	Orgs      organizationReader
	Line      linePusher
	Email     emailSender
	Logger    *logger.Logger
}

// NewDispatcher builds the hybrid notification dispatcher.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking reader required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer reader required")
	}
	if params.Orgs == nil {
		return nil, fmt.Errorf("organization reader required")
	}
	if params.Line == nil {
		return nil, fmt.Errorf("line client required")
	}
	if params.Email == nil {
		return nil, fmt.Errorf("email client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		repo:      params.Repo,
		bookings:  params.Bookings,
		customers: params.Customers,
		orgs:      params.Orgs,
		line:      params.Line,
		email:     params.Email,
		logg:      params.Logger,
	}, nil
}

// Dispatch handles one notification request. Delivery failures are logged and
// swallowed so the event is acked; a missed message must never wedge the
// consumer or roll back the booking change that caused it.
func (d *Dispatcher) Dispatch(ctx context.Context, event payloads.NotificationRequestedEvent) error {
	if !event.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown notification type %q", event.Type))
	}

	booking, err := d.bookings.FindAnyByID(ctx, event.BookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking for notification")
	}
	org, err := d.orgs.ByID(ctx, booking.OrganizationID)
	if err != nil {
		return err
	}
	customer, err := d.customers.FindByID(ctx, booking.OrganizationID, booking.CustomerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer for notification")
	}

	ctx = d.logg.WithBookingID(ctx, booking.ID.String())
	title, body := buildMessage(event.Type, booking, org, customer.Name)
	channel := pickChannel(customer, org)

	switch channel {
	case enums.NotificationChannelLine:
		if err := d.line.PushText(ctx, *org.LineAccessToken, *customer.LineUserID, body); err != nil {
			d.logg.Warn(ctx, fmt.Sprintf("line delivery failed: %v", err))
		}
	case enums.NotificationChannelEmail:
		msg := sendgrid.Message{
			To:       *customer.Email,
			Subject:  title,
			Body:     body,
			FromName: org.Name,
		}
		if err := d.email.Send(ctx, msg); err != nil {
			d.logg.Warn(ctx, fmt.Sprintf("email delivery failed: %v", err))
		}
	default:
		d.logg.Info(ctx, "no delivery channel for customer, feed only")
	}

	bookingID := booking.ID
	row := &models.Notification{
		OrganizationID: booking.OrganizationID,
		BookingID:      &bookingID,
		Type:           event.Type,
		Channel:        channel,
		Title:          title,
		Body:           body,
	}
	if err := d.repo.Insert(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification feed row")
	}

	d.logg.Info(ctx, fmt.Sprintf("notification dispatched over %s", channel))
	return nil
}

func pickChannel(customer *models.Customer, org *models.Organization) enums.NotificationChannel {
	if customer.LineUserID != nil && *customer.LineUserID != "" && org.LineConfigured() {
		return enums.NotificationChannelLine
	}
	if customer.Email != nil && *customer.Email != "" {
		return enums.NotificationChannelEmail
	}
	return enums.NotificationChannelNone
}
