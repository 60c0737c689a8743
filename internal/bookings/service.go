package bookings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/availability"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/customers"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/pricing"
	dbpkg "github.com/ayuuum/HomeServiceAI-sub000/pkg/db"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox/payloads"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

const maxPreferences = 3

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service owns the booking write path and lifecycle transitions.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Summary, error)
	Get(ctx context.Context, orgID, bookingID uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*BookingList, error)
	Approve(ctx context.Context, input ApproveInput) (*CheckoutSession, error)
	Cancel(ctx context.Context, input CancelInput) error
	Complete(ctx context.Context, input CompleteInput) error
	AmendAmount(ctx context.Context, input AmendInput) error
	ResendPaymentLink(ctx context.Context, orgID, bookingID uuid.UUID, actor string) (*CheckoutSession, error)
	PaymentCompleted(ctx context.Context, sessionID string, paidAt time.Time) error
	PaymentExpired(ctx context.Context, sessionID string, expiredAt time.Time) error
}

type service struct {
	repo      Repository
	catalog   CatalogReader
	customers CustomerResolver
	events    OutboxEmitter
	drafts    DraftClearer
	gmv       GMVAuditor
	payments  PaymentLinker
	orgs      OrganizationReader
	tx        txRunner
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the booking service. Every dependency is mandatory; the
// draft store may be a no-op implementation when drafts are disabled.
func NewService(
	repo Repository,
	catalog CatalogReader,
	resolver CustomerResolver,
	events OutboxEmitter,
	drafts DraftClearer,
	gmv GMVAuditor,
	payments PaymentLinker,
	orgs OrganizationReader,
	tx txRunner,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("customer resolver required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if drafts == nil {
		return nil, fmt.Errorf("draft clearer required")
	}
	if gmv == nil {
		return nil, fmt.Errorf("gmv auditor required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment linker required")
	}
	if orgs == nil {
		return nil, fmt.Errorf("organization reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		catalog:   catalog,
		customers: resolver,
		events:    events,
		drafts:    drafts,
		gmv:       gmv,
		payments:  payments,
		orgs:      orgs,
		tx:        tx,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Create validates a booking submission and writes the header, line
// snapshots, customer row and outbox events in one transaction. Prices are
// recomputed from the catalog; client-supplied amounts are never trusted.
func (s *service) Create(ctx context.Context, input CreateInput) (*Summary, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	bookingID := input.BookingID
	if bookingID == uuid.Nil {
		bookingID = uuid.New()
	}

	var summary *Summary
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		taken, err := repo.SlotTaken(ctx, input.OrganizationID, input.SelectedDate, input.SelectedTime)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slot")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "requested slot is already booked")
		}

		customerID, err := s.customers.Resolve(ctx, tx, customers.ResolveInput{
			OrganizationID: input.OrganizationID,
			Name:           input.Contact.Name,
			Email:          input.Contact.Email,
			Phone:          input.Contact.Phone,
			PostalCode:     input.Contact.PostalCode,
			Address:        input.Contact.Address,
			Building:       input.Contact.Building,
			LineUserID:     input.Contact.LineUserID,
			AvatarURL:      input.Contact.AvatarURL,
			Authenticated:  input.Authenticated,
		})
		if err != nil {
			return err
		}

		quote, err := s.priceSelections(ctx, tx, input)
		if err != nil {
			return err
		}

		booking := s.buildBooking(bookingID, customerID, input, quote)
		if err := repo.Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert booking")
		}

		lines := make([]models.BookingService, 0, len(quote.Services))
		for _, line := range quote.Services {
			lines = append(lines, models.BookingService{
				BookingID: bookingID,
				ServiceID: line.ServiceID,
				Title:     line.Title,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Subtotal:  line.Subtotal,
				Discount:  line.Discount,
			})
		}
		if err := repo.CreateServices(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert booking services")
		}

		optionRows := make([]models.BookingOption, 0, len(quote.Options))
		for _, opt := range quote.Options {
			optionRows = append(optionRows, models.BookingOption{
				BookingID: bookingID,
				OptionID:  opt.OptionID,
				Title:     opt.Title,
				UnitPrice: opt.UnitPrice,
				Quantity:  opt.Quantity,
				Subtotal:  opt.Subtotal,
			})
		}
		if err := repo.CreateOptions(ctx, optionRows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert booking options")
		}

		actor := actorRef(input.Actor, input.OrganizationID)
		err = s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   bookingID,
			Actor:         actor,
			Data: payloads.BookingCreatedEvent{
				BookingID:      bookingID,
				OrganizationID: input.OrganizationID,
				CustomerID:     customerID,
				SelectedDate:   input.SelectedDate,
				SelectedTime:   input.SelectedTime,
				PaymentMethod:  input.PaymentMethod,
				TotalPrice:     quote.TotalPrice,
				Discount:       quote.Discount,
			},
		})
		if err != nil {
			return err
		}

		notifType := enums.NotificationTypeBookingPending
		if input.WalkIn {
			notifType = enums.NotificationTypeBookingConfirmed
		}
		err = s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationRequested,
			AggregateType: enums.AggregateNotification,
			AggregateID:   bookingID,
			Actor:         actor,
			Data: payloads.NotificationRequestedEvent{
				BookingID:      bookingID,
				OrganizationID: input.OrganizationID,
				CustomerID:     customerID,
				Type:           notifType,
			},
		})
		if err != nil {
			return err
		}

		summary = &Summary{
			BookingID:     bookingID,
			Status:        booking.Status,
			SelectedDate:  booking.SelectedDate,
			SelectedTime:  booking.SelectedTime,
			ServiceTitles: serviceTitles(quote.Services),
			TotalPrice:    quote.TotalPrice,
			Discount:      quote.Discount,
			FinalAmount:   quote.FinalAmount,
			CustomerName:  strings.TrimSpace(input.Contact.Name),
			CustomerEmail: strings.TrimSpace(strings.ToLower(input.Contact.Email)),
		}
		return nil
	})
	if err != nil {
		// Two racing submissions can both pass the advisory check; the
		// partial unique index settles the loser here.
		if dbpkg.IsUniqueViolation(err, "ux_bookings_org_slot_active") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "requested slot is already booked")
		}
		return nil, err
	}

	if input.VisitorID != "" {
		if clearErr := s.drafts.Clear(ctx, input.OrganizationID, input.VisitorID); clearErr != nil {
			s.logg.Warn(s.logg.WithBookingID(ctx, bookingID.String()), "draft clear failed after booking")
		}
	}

	s.logg.Info(s.logg.WithBookingID(ctx, bookingID.String()), "booking created")
	return summary, nil
}

func (s *service) Get(ctx context.Context, orgID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, orgID, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booking, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*BookingList, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	list, err := s.repo.List(ctx, orgID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return list, nil
}

// priceSelections loads the org-scoped catalog rows for the request and
// recomputes the quote server-side.
func (s *service) priceSelections(ctx context.Context, tx *gorm.DB, input CreateInput) (*pricing.Quote, error) {
	catalog := s.catalog.WithTx(tx)

	org, err := s.orgs.ByID(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}

	serviceIDs := make([]uuid.UUID, 0, len(input.Services))
	quantities := make(map[uuid.UUID]int, len(input.Services))
	for _, choice := range input.Services {
		serviceIDs = append(serviceIDs, choice.ServiceID)
		quantities[choice.ServiceID] += choice.Quantity
	}

	rows, err := catalog.ServicesByIDs(ctx, input.OrganizationID, serviceIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load services")
	}
	if len(rows) != len(quantities) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown or inactive service in request")
	}

	selections := make([]pricing.ServiceSelection, 0, len(rows))
	for _, row := range rows {
		selections = append(selections, pricing.ServiceSelection{
			Service:  row,
			Quantity: quantities[row.ID],
		})
	}

	var optionSelections []pricing.OptionSelection
	if len(input.Options) > 0 {
		optionIDs := make([]uuid.UUID, 0, len(input.Options))
		optionQty := make(map[uuid.UUID]int, len(input.Options))
		for _, choice := range input.Options {
			optionIDs = append(optionIDs, choice.OptionID)
			optionQty[choice.OptionID] += choice.Quantity
		}
		optionRows, err := catalog.OptionsByIDs(ctx, input.OrganizationID, optionIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load options")
		}
		if len(optionRows) != len(optionQty) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown or inactive option in request")
		}
		// Options ride on their parent service; a service zeroed out of
		// the request takes its options with it.
		for _, row := range optionRows {
			if quantities[row.ServiceID] <= 0 {
				continue
			}
			optionSelections = append(optionSelections, pricing.OptionSelection{
				Option:   row,
				Quantity: optionQty[row.ID],
			})
		}
	}

	quote := pricing.Compute(selections, optionSelections, org.SetDiscounts)
	if len(quote.Services) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one service with positive quantity required")
	}
	return &quote, nil
}

func (s *service) buildBooking(bookingID, customerID uuid.UUID, input CreateInput, quote *pricing.Quote) *models.Booking {
	booking := &models.Booking{
		ID:              bookingID,
		OrganizationID:  input.OrganizationID,
		CustomerID:      customerID,
		Status:          enums.BookingStatusPending,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		SelectedDate:    input.SelectedDate,
		SelectedTime:    input.SelectedTime,
		RequiresParking: input.RequiresParking,
		TotalPrice:      quote.TotalPrice,
		Discount:        quote.Discount,
	}
	if note := strings.TrimSpace(input.CustomerNote); note != "" {
		booking.CustomerNote = &note
	}
	for i, pref := range input.Preferences {
		if i >= maxPreferences {
			break
		}
		date, slot := pref.Date, pref.Time
		switch i {
		case 0:
			booking.Preference1Date, booking.Preference1Time = &date, &slot
		case 1:
			booking.Preference2Date, booking.Preference2Time = &date, &slot
		case 2:
			booking.Preference3Date, booking.Preference3Time = &date, &slot
		}
	}
	if input.WalkIn {
		// Walk-ins are confirmed work entered after the fact; they count
		// toward GMV immediately.
		now := s.now().UTC()
		booking.Status = enums.BookingStatusConfirmed
		booking.ConfirmedAt = &now
		booking.GMVIncludedAt = &now
	}
	return booking
}

func validateCreate(input *CreateInput) error {
	if input.OrganizationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if len(input.Services) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one service required")
	}
	if input.SelectedDate == "" || input.SelectedTime == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "date and time required")
	}
	if err := availability.ValidateDate(input.SelectedDate); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid booking date")
	}
	if input.RequiresParking == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "parking availability must be answered")
	}
	if strings.TrimSpace(input.Contact.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if email := strings.TrimSpace(input.Contact.Email); email != "" && !emailPattern.MatchString(email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCash
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if len(input.Preferences) > maxPreferences {
		return pkgerrors.New(pkgerrors.CodeValidation, "at most three preferences allowed")
	}
	for _, pref := range input.Preferences {
		if pref.Date == "" || pref.Time == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "preference needs both date and time")
		}
		if err := availability.ValidateDate(pref.Date); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid preference date")
		}
	}
	return nil
}

func actorRef(actor string, orgID uuid.UUID) *outbox.ActorRef {
	if actor == "" {
		actor = "customer"
	}
	ref := &outbox.ActorRef{Actor: actor}
	if orgID != uuid.Nil {
		id := orgID
		ref.OrganizationID = &id
	}
	return ref
}

func serviceTitles(lines []pricing.LineQuote) string {
	titles := make([]string, 0, len(lines))
	for _, line := range lines {
		titles = append(titles, line.Title)
	}
	return strings.Join(titles, ", ")
}
