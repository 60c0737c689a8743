package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/bookings"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/organizations"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type bookingServiceStub struct {
	createInput    *bookings.CreateInput
	createSummary  *bookings.Summary
	createErr      error
	listOrgID      uuid.UUID
	listParams     pagination.Params
	listFilters    bookings.ListFilters
	listResult     *bookings.BookingList
	approveInput   *bookings.ApproveInput
	approveSession *bookings.CheckoutSession
	cancelInput    *bookings.CancelInput
	completeInput  *bookings.CompleteInput
	amendInput     *bookings.AmendInput
	resendSession  *bookings.CheckoutSession
	booking        *models.Booking
}

func (s *bookingServiceStub) Create(ctx context.Context, input bookings.CreateInput) (*bookings.Summary, error) {
	s.createInput = &input
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.createSummary != nil {
		return s.createSummary, nil
	}
	return &bookings.Summary{
		BookingID:    uuid.New(),
		Status:       enums.BookingStatusPending,
		SelectedDate: input.SelectedDate,
		SelectedTime: input.SelectedTime,
	}, nil
}

func (s *bookingServiceStub) Get(ctx context.Context, orgID, bookingID uuid.UUID) (*models.Booking, error) {
	if s.booking == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	return s.booking, nil
}

func (s *bookingServiceStub) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters bookings.ListFilters) (*bookings.BookingList, error) {
	s.listOrgID = orgID
	s.listParams = params
	s.listFilters = filters
	if s.listResult != nil {
		return s.listResult, nil
	}
	return &bookings.BookingList{Bookings: []bookings.BookingSummary{}}, nil
}

func (s *bookingServiceStub) Approve(ctx context.Context, input bookings.ApproveInput) (*bookings.CheckoutSession, error) {
	s.approveInput = &input
	return s.approveSession, nil
}

func (s *bookingServiceStub) Cancel(ctx context.Context, input bookings.CancelInput) error {
	s.cancelInput = &input
	return nil
}

func (s *bookingServiceStub) Complete(ctx context.Context, input bookings.CompleteInput) error {
	s.completeInput = &input
	return nil
}

func (s *bookingServiceStub) AmendAmount(ctx context.Context, input bookings.AmendInput) error {
	s.amendInput = &input
	return nil
}

func (s *bookingServiceStub) ResendPaymentLink(ctx context.Context, orgID, bookingID uuid.UUID, actor string) (*bookings.CheckoutSession, error) {
	return s.resendSession, nil
}

func (s *bookingServiceStub) PaymentCompleted(ctx context.Context, sessionID string, paidAt time.Time) error {
	return nil
}

func (s *bookingServiceStub) PaymentExpired(ctx context.Context, sessionID string, expiredAt time.Time) error {
	return nil
}

type orgServiceStub struct {
	org *models.Organization
}

func (s *orgServiceStub) BySlug(ctx context.Context, slug string) (*models.Organization, error) {
	if s.org == nil || s.org.Slug != slug {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	return s.org, nil
}

func (s *orgServiceStub) ByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	if s.org == nil || s.org.ID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	return s.org, nil
}

func (s *orgServiceStub) SetDiscounts(ctx context.Context, orgID uuid.UUID) (models.SetDiscounts, error) {
	org, err := s.ByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return org.SetDiscounts, nil
}

func (s *orgServiceStub) ReplaceSetDiscounts(ctx context.Context, orgID uuid.UUID, sets models.SetDiscounts) (models.SetDiscounts, error) {
	org, err := s.ByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	org.SetDiscounts = sets
	return sets, nil
}

func (s *orgServiceStub) PublicBranding(ctx context.Context, slug string) (*organizations.Branding, error) {
	org, err := s.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &organizations.Branding{ID: org.ID, Slug: org.Slug, Name: org.Name, Layout: org.Layout}, nil
}

func publicBookingRouter(orgs organizations.Service, svc bookings.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/public/orgs/{slug}/bookings", CreateBooking(orgs, svc, nil))
	r.Post("/api/public/bookings/{bookingID}/cancel", CustomerCancelBooking(svc, nil))
	return r
}

func validBookingBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"contact": map[string]string{
			"name":  "Sato Hanako",
			"email": "hanako@example.com",
			"phone": "090-0000-0000",
		},
		"services": []map[string]any{
			{"service_id": uuid.NewString(), "quantity": 2},
		},
		"selected_date":  "2026-09-15",
		"selected_time":  "10:00",
		"payment_method": "cash",
	})
	require.NoError(t, err)
	return body
}

func TestCreateBookingResolvesOrganizationFromSlug(t *testing.T) {
	org := &models.Organization{ID: uuid.New(), Slug: "sakura-clean", Name: "Sakura Clean", Layout: "standard"}
	stub := &bookingServiceStub{}
	router := publicBookingRouter(&orgServiceStub{org: org}, stub)

	req := httptest.NewRequest(http.MethodPost, "/api/public/orgs/sakura-clean/bookings", bytes.NewReader(validBookingBody(t)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, stub.createInput)
	assert.Equal(t, org.ID, stub.createInput.OrganizationID)
	assert.Equal(t, "customer", stub.createInput.Actor)
	assert.False(t, stub.createInput.Authenticated)
	assert.False(t, stub.createInput.WalkIn)
	assert.Equal(t, enums.PaymentMethodCash, stub.createInput.PaymentMethod)
}

func TestCreateBookingMarksLineUsersAuthenticated(t *testing.T) {
	org := &models.Organization{ID: uuid.New(), Slug: "sakura-clean", Name: "Sakura Clean", Layout: "standard"}
	stub := &bookingServiceStub{}
	router := publicBookingRouter(&orgServiceStub{org: org}, stub)

	body, err := json.Marshal(map[string]any{
		"contact": map[string]string{
			"name":         "Sato Hanako",
			"line_user_id": "U1234567890",
		},
		"services": []map[string]any{
			{"service_id": uuid.NewString(), "quantity": 1},
		},
		"selected_date":  "2026-09-15",
		"selected_time":  "10:00",
		"payment_method": "online_card",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/public/orgs/sakura-clean/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, stub.createInput)
	assert.True(t, stub.createInput.Authenticated)
}

func TestCreateBookingRejectsUnknownSlug(t *testing.T) {
	stub := &bookingServiceStub{}
	router := publicBookingRouter(&orgServiceStub{}, stub)

	req := httptest.NewRequest(http.MethodPost, "/api/public/orgs/missing/bookings", bytes.NewReader(validBookingBody(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, stub.createInput)
}

func TestCreateBookingRejectsUnknownPaymentMethod(t *testing.T) {
	org := &models.Organization{ID: uuid.New(), Slug: "sakura-clean", Name: "Sakura Clean", Layout: "standard"}
	stub := &bookingServiceStub{}
	router := publicBookingRouter(&orgServiceStub{org: org}, stub)

	body, err := json.Marshal(map[string]any{
		"contact":        map[string]string{"name": "Sato Hanako"},
		"services":       []map[string]any{{"service_id": uuid.NewString(), "quantity": 1}},
		"selected_date":  "2026-09-15",
		"selected_time":  "10:00",
		"payment_method": "cheque",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/public/orgs/sakura-clean/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.createInput)
}

func TestCreateBookingRejectsEmptyServices(t *testing.T) {
	org := &models.Organization{ID: uuid.New(), Slug: "sakura-clean", Name: "Sakura Clean", Layout: "standard"}
	stub := &bookingServiceStub{}
	router := publicBookingRouter(&orgServiceStub{org: org}, stub)

	body, err := json.Marshal(map[string]any{
		"contact":        map[string]string{"name": "Sato Hanako"},
		"services":       []map[string]any{},
		"selected_date":  "2026-09-15",
		"selected_time":  "10:00",
		"payment_method": "cash",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/public/orgs/sakura-clean/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.createInput)
}

func TestCustomerCancelBookingMarksByCustomer(t *testing.T) {
	stub := &bookingServiceStub{}
	router := publicBookingRouter(&orgServiceStub{}, stub)

	bookingID := uuid.New()
	body := []byte(`{"reason":"schedule conflict"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/public/bookings/"+bookingID.String()+"/cancel", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, stub.cancelInput)
	assert.Equal(t, bookingID, stub.cancelInput.BookingID)
	assert.Equal(t, uuid.Nil, stub.cancelInput.OrganizationID)
	assert.True(t, stub.cancelInput.ByCustomer)
	assert.Equal(t, "schedule conflict", stub.cancelInput.Reason)
}

func TestCustomerCancelBookingRejectsMalformedID(t *testing.T) {
	stub := &bookingServiceStub{}
	router := publicBookingRouter(&orgServiceStub{}, stub)

	req := httptest.NewRequest(http.MethodPost, "/api/public/bookings/not-a-uuid/cancel", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.cancelInput)
}
