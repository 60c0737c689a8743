package bookings

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/customers"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox/payloads"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type stubBookingsRepo struct {
	slotTaken bool
	created   *models.Booking
	lines     []models.BookingService
	options   []models.BookingOption
	updates   map[string]any
	updatedID uuid.UUID
	byID      map[uuid.UUID]*models.Booking
	bySession map[string]*models.Booking
	createErr error
}

func (s *stubBookingsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubBookingsRepo) Create(ctx context.Context, booking *models.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = booking
	return nil
}

func (s *stubBookingsRepo) CreateServices(ctx context.Context, items []models.BookingService) error {
	s.lines = append(s.lines, items...)
	return nil
}

func (s *stubBookingsRepo) CreateOptions(ctx context.Context, items []models.BookingOption) error {
	s.options = append(s.options, items...)
	return nil
}

func (s *stubBookingsRepo) FindByID(ctx context.Context, orgID, bookingID uuid.UUID) (*models.Booking, error) {
	if b, ok := s.byID[bookingID]; ok && b.OrganizationID == orgID {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBookingsRepo) FindAnyByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	if b, ok := s.byID[bookingID]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBookingsRepo) FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Booking, error) {
	if b, ok := s.bySession[sessionID]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBookingsRepo) SlotTaken(ctx context.Context, orgID uuid.UUID, date, timeSlot string) (bool, error) {
	return s.slotTaken, nil
}

func (s *stubBookingsRepo) Update(ctx context.Context, bookingID uuid.UUID, updates map[string]any) error {
	s.updatedID = bookingID
	s.updates = updates
	return nil
}

func (s *stubBookingsRepo) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*BookingList, error) {
	return &BookingList{}, nil
}

func (s *stubBookingsRepo) FindExpiredAwaitingPayment(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return nil, nil
}

func (s *stubBookingsRepo) FindConfirmedOn(ctx context.Context, date string) ([]models.Booking, error) {
	return nil, nil
}

type stubCatalogReader struct {
	services []models.Service
	options  []models.ServiceOption
}

func (s *stubCatalogReader) WithTx(tx *gorm.DB) CatalogReader { return s }

func (s *stubCatalogReader) ServicesByIDs(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID) ([]models.Service, error) {
	var out []models.Service
	for _, row := range s.services {
		for _, id := range serviceIDs {
			if row.ID == id {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

func (s *stubCatalogReader) OptionsByIDs(ctx context.Context, orgID uuid.UUID, optionIDs []uuid.UUID) ([]models.ServiceOption, error) {
	var out []models.ServiceOption
	for _, row := range s.options {
		for _, id := range optionIDs {
			if row.ID == id {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

type stubResolver struct {
	customerID uuid.UUID
	input      customers.ResolveInput
}

func (s *stubResolver) Resolve(ctx context.Context, tx *gorm.DB, input customers.ResolveInput) (uuid.UUID, error) {
	s.input = input
	if s.customerID == uuid.Nil {
		s.customerID = uuid.New()
	}
	return s.customerID, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubEmitter) byType(eventType enums.OutboxEventType) []outbox.DomainEvent {
	var out []outbox.DomainEvent
	for _, e := range s.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type stubDraftClearer struct {
	clearedOrg     uuid.UUID
	clearedVisitor string
}

func (s *stubDraftClearer) Clear(ctx context.Context, orgID uuid.UUID, visitorID string) error {
	s.clearedOrg = orgID
	s.clearedVisitor = visitorID
	return nil
}

type stubGMVAuditor struct {
	entries []models.GMVAuditLog
}

func (s *stubGMVAuditor) InsertTx(tx *gorm.DB, entry models.GMVAuditLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubPaymentLinker struct {
	session *CheckoutSession
	err     error
	calls   int
}

func (s *stubPaymentLinker) CreateSession(ctx context.Context, booking *models.Booking, org *models.Organization) (*CheckoutSession, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type stubOrgReader struct {
	org *models.Organization
}

func (s *stubOrgReader) ByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	if s.org == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	return s.org, nil
}

type stubBookingsTx struct{}

func (s *stubBookingsTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type bookingsFixture struct {
	repo     *stubBookingsRepo
	catalog  *stubCatalogReader
	resolver *stubResolver
	emitter  *stubEmitter
	drafts   *stubDraftClearer
	gmv      *stubGMVAuditor
	payments *stubPaymentLinker
	orgs     *stubOrgReader
	svc      Service
}

func newBookingsFixture(t *testing.T) *bookingsFixture {
	t.Helper()
	f := &bookingsFixture{
		repo:     &stubBookingsRepo{byID: map[uuid.UUID]*models.Booking{}, bySession: map[string]*models.Booking{}},
		catalog:  &stubCatalogReader{},
		resolver: &stubResolver{customerID: uuid.New()},
		emitter:  &stubEmitter{},
		drafts:   &stubDraftClearer{},
		gmv:      &stubGMVAuditor{},
		payments: &stubPaymentLinker{},
		orgs:     &stubOrgReader{org: &models.Organization{Name: "Test Cleaning Co", CheckoutExpiryHours: 24}},
	}
	logg := logger.New(logger.Options{ServiceName: "bookings-test", Output: io.Discard})
	svc, err := NewService(f.repo, f.catalog, f.resolver, f.emitter, f.drafts, f.gmv, f.payments, f.orgs, &stubBookingsTx{}, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func rate(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func boolPtr(v bool) *bool { return &v }

// fixtureCatalog seeds one tiered service (base 3000, 10% off from two
// units) and one 2900 option, the worked example used across the admin docs.
func fixtureCatalog(f *bookingsFixture, orgID uuid.UUID) (uuid.UUID, uuid.UUID) {
	serviceID := uuid.New()
	optionID := uuid.New()
	f.catalog.services = []models.Service{{
		ID:             serviceID,
		OrganizationID: orgID,
		Title:          "Air Conditioner Cleaning",
		BasePrice:      3000,
		Active:         true,
		DiscountTiers: []models.ServiceDiscountTier{
			{ServiceID: serviceID, MinQuantity: 2, DiscountRate: rate("0.1")},
		},
	}}
	f.catalog.options = []models.ServiceOption{{
		ID:        optionID,
		ServiceID: serviceID,
		Title:     "Outdoor Unit Cleaning",
		Price:     2900,
		Active:    true,
	}}
	return serviceID, optionID
}

func validCreateInput(orgID, serviceID, optionID uuid.UUID) CreateInput {
	return CreateInput{
		OrganizationID: orgID,
		Contact: ContactInput{
			Name:  "Tanaka Taro",
			Email: "tanaka@example.com",
			Phone: "090-1234-5678",
		},
		Services:        []ServiceChoice{{ServiceID: serviceID, Quantity: 3}},
		Options:         []OptionChoice{{OptionID: optionID, Quantity: 1}},
		SelectedDate:    "2026-09-15",
		SelectedTime:    "10:00",
		RequiresParking: boolPtr(true),
		PaymentMethod:   enums.PaymentMethodCash,
	}
}

func TestCreateComputesServerSidePricing(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)

	summary, err := f.svc.Create(context.Background(), validCreateInput(orgID, serviceID, optionID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 3000 x 3 = 9000, 10% tier = 900 off, option 2900 on top.
	if summary.TotalPrice != 11900 {
		t.Errorf("total = %d, want 11900", summary.TotalPrice)
	}
	if summary.Discount != 900 {
		t.Errorf("discount = %d, want 900", summary.Discount)
	}
	if summary.FinalAmount != 11000 {
		t.Errorf("final = %d, want 11000", summary.FinalAmount)
	}
	if summary.Status != enums.BookingStatusPending {
		t.Errorf("status = %s, want pending", summary.Status)
	}

	if f.repo.created == nil {
		t.Fatal("booking row not written")
	}
	if f.repo.created.TotalPrice != 11900 || f.repo.created.Discount != 900 {
		t.Errorf("header amounts = %d/%d", f.repo.created.TotalPrice, f.repo.created.Discount)
	}
	if f.repo.created.GMVIncludedAt != nil {
		t.Error("pending booking must not carry a gmv stamp")
	}
	if len(f.repo.lines) != 1 || f.repo.lines[0].Subtotal != 9000 || f.repo.lines[0].Discount != 900 {
		t.Errorf("line snapshot = %+v", f.repo.lines)
	}
	if len(f.repo.options) != 1 || f.repo.options[0].UnitPrice != 2900 || f.repo.options[0].Quantity != 1 {
		t.Errorf("option snapshot = %+v", f.repo.options)
	}
}

func TestCreateEmitsCreatedAndNotificationEvents(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)

	summary, err := f.svc.Create(context.Background(), validCreateInput(orgID, serviceID, optionID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created := f.emitter.byType(enums.EventBookingCreated)
	if len(created) != 1 {
		t.Fatalf("booking_created events = %d, want 1", len(created))
	}
	payload := created[0].Data.(payloads.BookingCreatedEvent)
	if payload.BookingID != summary.BookingID || payload.TotalPrice != 11900 {
		t.Errorf("created payload = %+v", payload)
	}

	notifs := f.emitter.byType(enums.EventNotificationRequested)
	if len(notifs) != 1 {
		t.Fatalf("notification_requested events = %d, want 1", len(notifs))
	}
	notif := notifs[0].Data.(payloads.NotificationRequestedEvent)
	if notif.Type != enums.NotificationTypeBookingPending {
		t.Errorf("notification type = %s, want pending", notif.Type)
	}
}

func TestCreateValidationOrder(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)

	cases := []struct {
		name    string
		mutate  func(*CreateInput)
		message string
	}{
		{"no services", func(in *CreateInput) { in.Services = nil }, "at least one service required"},
		{"no date", func(in *CreateInput) { in.SelectedDate = "" }, "date and time required"},
		{"bad date", func(in *CreateInput) { in.SelectedDate = "15-09-2026" }, "invalid booking date"},
		{"parking unanswered", func(in *CreateInput) { in.RequiresParking = nil }, "parking availability must be answered"},
		{"no name", func(in *CreateInput) { in.Contact.Name = "  " }, "customer name required"},
		{"bad email", func(in *CreateInput) { in.Contact.Email = "not-an-email" }, "invalid email address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput(orgID, serviceID, optionID)
			tc.mutate(&input)
			_, err := f.svc.Create(context.Background(), input)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
			if appErr.Message() != tc.message {
				t.Errorf("message = %q, want %q", appErr.Message(), tc.message)
			}
		})
	}
}

func TestCreateSlotConflictWritesNothing(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)
	f.repo.slotTaken = true

	input := validCreateInput(orgID, serviceID, optionID)
	input.VisitorID = "visitor-1"
	_, err := f.svc.Create(context.Background(), input)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
	if f.repo.created != nil {
		t.Error("booking written despite conflict")
	}
	if len(f.emitter.events) != 0 {
		t.Error("events emitted despite conflict")
	}
	if f.drafts.clearedVisitor != "" {
		t.Error("draft cleared despite conflict")
	}
}

func TestCreateUnknownServiceRejected(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	_, optionID := fixtureCatalog(f, orgID)

	input := validCreateInput(orgID, uuid.New(), optionID)
	_, err := f.svc.Create(context.Background(), input)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateAppliesOrganizationSetDiscount(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)
	hoodID := uuid.New()
	f.catalog.services = append(f.catalog.services, models.Service{
		ID:             hoodID,
		OrganizationID: orgID,
		Title:          "Range Hood Cleaning",
		BasePrice:      15000,
		Active:         true,
	})
	f.orgs.org.SetDiscounts = models.SetDiscounts{{
		ID:           uuid.New(),
		Title:        "AC + range hood set",
		DiscountRate: decimal.RequireFromString("0.1"),
		ServiceIDs:   []uuid.UUID{serviceID, hoodID},
	}}

	input := validCreateInput(orgID, serviceID, optionID)
	input.Services = []ServiceChoice{
		{ServiceID: serviceID, Quantity: 3},
		{ServiceID: hoodID, Quantity: 1},
	}
	input.Options = nil

	summary, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// AC: 9000 - 900 tier. Set: 10% of (8100 + 15000) = 2310.
	if summary.TotalPrice != 24000 {
		t.Errorf("total = %d, want 24000", summary.TotalPrice)
	}
	if summary.Discount != 900+2310 {
		t.Errorf("discount = %d, want 3210", summary.Discount)
	}
	if summary.FinalAmount != 24000-3210 {
		t.Errorf("final = %d, want 20790", summary.FinalAmount)
	}
}

func TestCreateDropsOptionsOfDroppedService(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)
	sinkID := uuid.New()
	f.catalog.services = append(f.catalog.services, models.Service{
		ID:             sinkID,
		OrganizationID: orgID,
		Title:          "Sink Repair",
		BasePrice:      8000,
		Active:         true,
	})

	input := validCreateInput(orgID, serviceID, optionID)
	input.Services = []ServiceChoice{
		{ServiceID: serviceID, Quantity: 0},
		{ServiceID: sinkID, Quantity: 1},
	}

	summary, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The AC service zeroed out, so its outdoor-unit option must not
	// survive into the quote.
	if summary.TotalPrice != 8000 {
		t.Errorf("total = %d, want 8000", summary.TotalPrice)
	}
	if len(f.repo.lines) != 1 || f.repo.lines[0].ServiceID != sinkID {
		t.Errorf("line snapshot = %+v", f.repo.lines)
	}
	if len(f.repo.options) != 0 {
		t.Errorf("orphaned option snapshot = %+v", f.repo.options)
	}
}

func TestCreateWalkInConfirmedImmediately(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)

	input := validCreateInput(orgID, serviceID, optionID)
	input.WalkIn = true
	input.Actor = "admin:sato"
	summary, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if summary.Status != enums.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", summary.Status)
	}
	if f.repo.created.ConfirmedAt == nil || f.repo.created.GMVIncludedAt == nil {
		t.Error("walk-in must be confirmed and gmv-stamped on creation")
	}

	notifs := f.emitter.byType(enums.EventNotificationRequested)
	if len(notifs) != 1 || notifs[0].Data.(payloads.NotificationRequestedEvent).Type != enums.NotificationTypeBookingConfirmed {
		t.Errorf("walk-in notification = %+v", notifs)
	}
}

func TestCreateClearsDraftAfterCommit(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)

	input := validCreateInput(orgID, serviceID, optionID)
	input.VisitorID = "visitor-42"
	if _, err := f.svc.Create(context.Background(), input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.drafts.clearedOrg != orgID || f.drafts.clearedVisitor != "visitor-42" {
		t.Errorf("draft clear = %s/%s", f.drafts.clearedOrg, f.drafts.clearedVisitor)
	}
}

func TestCreateHonorsClientBookingID(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)

	clientID := uuid.New()
	input := validCreateInput(orgID, serviceID, optionID)
	input.BookingID = clientID
	summary, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if summary.BookingID != clientID || f.repo.created.ID != clientID {
		t.Errorf("booking id = %s, want %s", summary.BookingID, clientID)
	}
}

func TestCreateAggregatesDuplicateServiceLines(t *testing.T) {
	f := newBookingsFixture(t)
	orgID := uuid.New()
	serviceID, optionID := fixtureCatalog(f, orgID)

	input := validCreateInput(orgID, serviceID, optionID)
	input.Services = []ServiceChoice{
		{ServiceID: serviceID, Quantity: 1},
		{ServiceID: serviceID, Quantity: 2},
	}
	summary, err := f.svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Same as a single qty-3 line: the tier applies to the combined quantity.
	if summary.TotalPrice != 11900 || summary.Discount != 900 {
		t.Errorf("amounts = %d/%d, want 11900/900", summary.TotalPrice, summary.Discount)
	}
	if len(f.repo.lines) != 1 {
		t.Errorf("lines = %d, want 1 aggregated line", len(f.repo.lines))
	}
}
