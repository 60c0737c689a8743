package notifications

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox/payloads"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/sendgrid"
)

type stubFeedRepo struct {
	inserted     []*models.Notification
	readAffected int64
	repoErr      error
}

func (s *stubFeedRepo) Insert(ctx context.Context, n *models.Notification) error {
	s.inserted = append(s.inserted, n)
	return nil
}

func (s *stubFeedRepo) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, unreadOnly bool) (*FeedList, error) {
	return &FeedList{}, nil
}

func (s *stubFeedRepo) MarkRead(ctx context.Context, orgID, notificationID uuid.UUID) (int64, error) {
	return s.readAffected, s.repoErr
}

func (s *stubFeedRepo) MarkAllRead(ctx context.Context, orgID uuid.UUID) error { return s.repoErr }

func (s *stubFeedRepo) UnreadCount(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return 0, s.repoErr
}

type stubBookingReader struct {
	booking *models.Booking
}

func (s *stubBookingReader) FindAnyByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if s.booking == nil {
		return nil, errors.New("not found")
	}
	return s.booking, nil
}

type stubCustomerReader struct {
	customer *models.Customer
}

func (s *stubCustomerReader) FindByID(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error) {
	return s.customer, nil
}

type stubOrgsReader struct {
	org *models.Organization
}

func (s *stubOrgsReader) ByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	return s.org, nil
}

type stubLinePusher struct {
	token   string
	userID  string
	text    string
	pushErr error
	calls   int
}

func (s *stubLinePusher) PushText(ctx context.Context, accessToken, lineUserID string, texts ...string) error {
	s.calls++
	s.token = accessToken
	s.userID = lineUserID
	if len(texts) > 0 {
		s.text = texts[0]
	}
	return s.pushErr
}

type stubEmailSender struct {
	msg   sendgrid.Message
	calls int
}

func (s *stubEmailSender) Send(ctx context.Context, msg sendgrid.Message) error {
	s.calls++
	s.msg = msg
	return nil
}

type dispatchFixture struct {
	repo       *stubFeedRepo
	line       *stubLinePusher
	email      *stubEmailSender
	customer   *models.Customer
	org        *models.Organization
	booking    *models.Booking
	dispatcher *Dispatcher
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()
	orgID := uuid.New()
	f := &dispatchFixture{
		repo:  &stubFeedRepo{},
		line:  &stubLinePusher{},
		email: &stubEmailSender{},
		org:   &models.Organization{ID: orgID, Name: "ハウクリPro"},
		customer: &models.Customer{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Name:           "田中",
		},
	}
	f.booking = &models.Booking{
		ID:             uuid.New(),
		OrganizationID: orgID,
		CustomerID:     f.customer.ID,
		SelectedDate:   "2026-09-15",
		SelectedTime:   "10:00",
		TotalPrice:     11900,
		Discount:       900,
	}

	logg := logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard})
	dispatcher, err := NewDispatcher(DispatcherParams{
		Repo:      f.repo,
		Bookings:  &stubBookingReader{booking: f.booking},
		Customers: &stubCustomerReader{customer: f.customer},
		Orgs:      &stubOrgsReader{org: f.org},
		Line:      f.line,
		Email:     f.email,
		Logger:    logg,
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	f.dispatcher = dispatcher
	return f
}

func (f *dispatchFixture) event(notifType enums.NotificationType) payloads.NotificationRequestedEvent {
	return payloads.NotificationRequestedEvent{
		BookingID:      f.booking.ID,
		OrganizationID: f.booking.OrganizationID,
		CustomerID:     f.customer.ID,
		Type:           notifType,
	}
}

func TestDispatchPrefersLine(t *testing.T) {
	f := newDispatchFixture(t)
	lineUser := "U1234567890"
	token := "channel-token"
	f.customer.LineUserID = &lineUser
	f.org.LineAccessToken = &token
	email := "tanaka@example.com"
	f.customer.Email = &email

	if err := f.dispatcher.Dispatch(context.Background(), f.event(enums.NotificationTypeBookingConfirmed)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if f.line.calls != 1 || f.email.calls != 0 {
		t.Errorf("line=%d email=%d, want line only", f.line.calls, f.email.calls)
	}
	if f.line.token != token || f.line.userID != lineUser {
		t.Errorf("line target = %s/%s", f.line.token, f.line.userID)
	}
	if !strings.Contains(f.line.text, "ご予約が確定しました") {
		t.Errorf("line text = %q", f.line.text)
	}

	if len(f.repo.inserted) != 1 {
		t.Fatalf("feed rows = %d", len(f.repo.inserted))
	}
	if f.repo.inserted[0].Channel != enums.NotificationChannelLine {
		t.Errorf("channel = %s, want line", f.repo.inserted[0].Channel)
	}
}

func TestDispatchFallsBackToEmail(t *testing.T) {
	f := newDispatchFixture(t)
	// LINE user but no channel token on the organization.
	lineUser := "U1234567890"
	f.customer.LineUserID = &lineUser
	email := "tanaka@example.com"
	f.customer.Email = &email

	if err := f.dispatcher.Dispatch(context.Background(), f.event(enums.NotificationTypeBookingPending)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if f.line.calls != 0 || f.email.calls != 1 {
		t.Errorf("line=%d email=%d, want email only", f.line.calls, f.email.calls)
	}
	if f.email.msg.To != email {
		t.Errorf("email to = %s", f.email.msg.To)
	}
	if f.email.msg.Subject != "ご予約リクエストを受け付けました" {
		t.Errorf("subject = %q", f.email.msg.Subject)
	}
	if f.repo.inserted[0].Channel != enums.NotificationChannelEmail {
		t.Errorf("channel = %s, want email", f.repo.inserted[0].Channel)
	}
}

func TestDispatchFeedOnlyWithoutChannels(t *testing.T) {
	f := newDispatchFixture(t)

	if err := f.dispatcher.Dispatch(context.Background(), f.event(enums.NotificationTypeReminder)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if f.line.calls != 0 || f.email.calls != 0 {
		t.Error("no delivery expected without channels")
	}
	if len(f.repo.inserted) != 1 || f.repo.inserted[0].Channel != enums.NotificationChannelNone {
		t.Errorf("feed rows = %+v", f.repo.inserted)
	}
}

func TestDispatchDeliveryFailureStillWritesFeed(t *testing.T) {
	f := newDispatchFixture(t)
	lineUser := "U1234567890"
	token := "channel-token"
	f.customer.LineUserID = &lineUser
	f.org.LineAccessToken = &token
	f.line.pushErr = errors.New("line down")

	if err := f.dispatcher.Dispatch(context.Background(), f.event(enums.NotificationTypeBookingCancelled)); err != nil {
		t.Fatalf("delivery failure must be swallowed, got %v", err)
	}
	if len(f.repo.inserted) != 1 {
		t.Fatalf("feed rows = %d, want 1", len(f.repo.inserted))
	}
}

func TestDispatchRejectsUnknownType(t *testing.T) {
	f := newDispatchFixture(t)
	event := f.event("bogus")
	if err := f.dispatcher.Dispatch(context.Background(), event); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
