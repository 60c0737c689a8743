package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/customers"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// Repository defines persistence operations for booking tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	CreateServices(ctx context.Context, items []models.BookingService) error
	CreateOptions(ctx context.Context, items []models.BookingOption) error
	FindByID(ctx context.Context, orgID, bookingID uuid.UUID) (*models.Booking, error)
	FindAnyByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Booking, error)
	SlotTaken(ctx context.Context, orgID uuid.UUID, date, timeSlot string) (bool, error)
	Update(ctx context.Context, bookingID uuid.UUID, updates map[string]any) error
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*BookingList, error)
	FindExpiredAwaitingPayment(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	FindConfirmedOn(ctx context.Context, date string) ([]models.Booking, error)
}

// CatalogReader loads the org-scoped services and options a booking request
// references. Prices always come from here, never from the client.
type CatalogReader interface {
	WithTx(tx *gorm.DB) CatalogReader
	ServicesByIDs(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID) ([]models.Service, error)
	OptionsByIDs(ctx context.Context, orgID uuid.UUID, optionIDs []uuid.UUID) ([]models.ServiceOption, error)
}

// CustomerResolver finds or creates the customer row inside the booking
// transaction.
type CustomerResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, input customers.ResolveInput) (uuid.UUID, error)
}

// OutboxEmitter queues domain events in the same transaction as the write
// they describe.
type OutboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DraftClearer removes the caller's autosaved draft after a successful write.
type DraftClearer interface {
	Clear(ctx context.Context, orgID uuid.UUID, visitorID string) error
}

// GMVAuditor appends the audit row accompanying a completion or amendment.
type GMVAuditor interface {
	InsertTx(tx *gorm.DB, entry models.GMVAuditLog) error
}

// PaymentLinker creates Stripe checkout sessions for deferred card payments.
type PaymentLinker interface {
	CreateSession(ctx context.Context, booking *models.Booking, org *models.Organization) (*CheckoutSession, error)
}

// OrganizationReader loads the tenant for payment and notification decisions.
type OrganizationReader interface {
	ByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
