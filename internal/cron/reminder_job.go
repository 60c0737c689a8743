package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/bookings"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox/payloads"
)

const defaultReminderLeadHours = 24

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type confirmedBookingReader interface {
	FindConfirmedOn(ctx context.Context, date string) ([]models.Booking, error)
}

type bookingWriter interface {
	Update(ctx context.Context, bookingID uuid.UUID, updates map[string]any) error
}

type bookingWriterFactory func(tx *gorm.DB) bookingWriter

// ReminderJobParams configure the visit reminder job.
type ReminderJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Bookings      confirmedBookingReader
	Outbox        outboxEmitter
	LeadHours     int
	WriterFactory bookingWriterFactory
}

// NewReminderJob builds the job that queues reminder notifications for
// confirmed bookings whose visit date falls inside the lead window.
func NewReminderJob(params ReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	leadHours := params.LeadHours
	if leadHours <= 0 {
		leadHours = defaultReminderLeadHours
	}
	writerFactory := params.WriterFactory
	if writerFactory == nil {
		writerFactory = func(tx *gorm.DB) bookingWriter { return bookings.NewRepository(tx) }
	}
	return &reminderJob{
		logg:          params.Logger,
		db:            params.DB,
		bookings:      params.Bookings,
		outbox:        params.Outbox,
		leadHours:     leadHours,
		writerFactory: writerFactory,
		now:           time.Now,
	}, nil
}

type reminderJob struct {
	logg          *logger.Logger
	db            txRunner
	bookings      confirmedBookingReader
	outbox        outboxEmitter
	leadHours     int
	writerFactory bookingWriterFactory
	now           func() time.Time
}

func (j *reminderJob) Name() string { return "booking-reminder" }

func (j *reminderJob) Run(ctx context.Context) error {
	targetDate := j.now().UTC().Add(time.Duration(j.leadHours) * time.Hour).Format("2006-01-02")
	rows, err := j.bookings.FindConfirmedOn(ctx, targetDate)
	if err != nil {
		return fmt.Errorf("query confirmed bookings for %s: %w", targetDate, err)
	}

	var errs []error
	sent := 0
	for _, booking := range rows {
		if err := j.remind(ctx, booking); err != nil {
			errs = append(errs, fmt.Errorf("remind booking %s: %w", booking.ID, err))
			continue
		}
		sent++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"date": targetDate, "count": sent})
	j.logg.Info(logCtx, "reminder sweep complete")
	return multierr.Combine(errs...)
}

// The reminder_sent_at stamp and the outbox row commit together, so a
// booking is reminded at most once even if the sweep reruns.
func (j *reminderJob) remind(ctx context.Context, booking models.Booking) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		writer := j.writerFactory(tx)
		now := j.now().UTC()
		if err := writer.Update(ctx, booking.ID, map[string]any{"reminder_sent_at": now}); err != nil {
			return err
		}
		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationRequested,
			AggregateType: enums.AggregateNotification,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{Actor: "system", OrganizationID: &booking.OrganizationID},
			Data: payloads.NotificationRequestedEvent{
				BookingID:      booking.ID,
				OrganizationID: booking.OrganizationID,
				CustomerID:     booking.CustomerID,
				Type:           enums.NotificationTypeReminder,
			},
		})
	})
}
