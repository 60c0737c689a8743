package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox/payloads"
)

type stubConfirmedReader struct {
	date string
	rows []models.Booking
}

func (s *stubConfirmedReader) FindConfirmedOn(ctx context.Context, date string) ([]models.Booking, error) {
	s.date = date
	return s.rows, nil
}

type stubBookingWriter struct {
	updates map[uuid.UUID]map[string]any
}

func (s *stubBookingWriter) Update(ctx context.Context, bookingID uuid.UUID, updates map[string]any) error {
	if s.updates == nil {
		s.updates = map[uuid.UUID]map[string]any{}
	}
	s.updates[bookingID] = updates
	return nil
}

type stubCronEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubCronEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubCronTx struct{}

func (stubCronTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func TestReminderJobTargetsLeadWindowDate(t *testing.T) {
	booking := models.Booking{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		CustomerID:     uuid.New(),
		Status:         enums.BookingStatusConfirmed,
	}
	reader := &stubConfirmedReader{rows: []models.Booking{booking}}
	writer := &stubBookingWriter{}
	emitter := &stubCronEmitter{}

	job, err := NewReminderJob(ReminderJobParams{
		Logger:        cronTestLogger(),
		DB:            stubCronTx{},
		Bookings:      reader,
		Outbox:        emitter,
		LeadHours:     24,
		WriterFactory: func(tx *gorm.DB) bookingWriter { return writer },
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	rj := job.(*reminderJob)
	rj.now = func() time.Time { return time.Date(2026, 9, 14, 15, 0, 0, 0, time.UTC) }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if reader.date != "2026-09-15" {
		t.Errorf("target date = %s, want 2026-09-15", reader.date)
	}
	updates, ok := writer.updates[booking.ID]
	if !ok {
		t.Fatal("reminder_sent_at never stamped")
	}
	if _, ok := updates["reminder_sent_at"]; !ok {
		t.Errorf("updates = %v, want reminder_sent_at", updates)
	}

	if len(emitter.events) != 1 {
		t.Fatalf("events = %d, want 1", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventNotificationRequested {
		t.Errorf("event type = %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.NotificationRequestedEvent)
	if !ok {
		t.Fatalf("payload type = %T", event.Data)
	}
	if payload.Type != enums.NotificationTypeReminder {
		t.Errorf("notification type = %s, want reminder", payload.Type)
	}
	if payload.BookingID != booking.ID {
		t.Errorf("booking id = %s", payload.BookingID)
	}
}

func TestReminderJobDefaultsLeadHours(t *testing.T) {
	job, err := NewReminderJob(ReminderJobParams{
		Logger:   cronTestLogger(),
		DB:       stubCronTx{},
		Bookings: &stubConfirmedReader{},
		Outbox:   &stubCronEmitter{},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.(*reminderJob).leadHours != defaultReminderLeadHours {
		t.Errorf("leadHours = %d", job.(*reminderJob).leadHours)
	}
}
