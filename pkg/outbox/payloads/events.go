package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
)

// BookingCreatedEvent signals a new booking written by the public form or a
// walk-in entry.
type BookingCreatedEvent struct {
	BookingID      uuid.UUID           `json:"booking_id"`
	OrganizationID uuid.UUID           `json:"organization_id"`
	CustomerID     uuid.UUID           `json:"customer_id"`
	SelectedDate   string              `json:"selected_date"`
	SelectedTime   string              `json:"selected_time"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	TotalPrice     int                 `json:"total_price"`
	Discount       int                 `json:"discount"`
}

// BookingConfirmedEvent is emitted when an admin approves a booking.
type BookingConfirmedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	CustomerID       uuid.UUID `json:"customer_id"`
	SelectedDate     string    `json:"selected_date"`
	SelectedTime     string    `json:"selected_time"`
	ChosenPreference *int      `json:"chosen_preference,omitempty"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

// BookingCancelledEvent covers both customer and admin cancellations.
type BookingCancelledEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CancelledAt    time.Time `json:"cancelled_at"`
	CancelledBy    string    `json:"cancelled_by"`
	Reason         string    `json:"reason,omitempty"`
}

// BookingCompletedEvent carries the settled amounts after work completion.
type BookingCompletedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	OrganizationID    uuid.UUID `json:"organization_id"`
	CustomerID        uuid.UUID `json:"customer_id"`
	FinalAmount       int       `json:"final_amount"`
	AdditionalCharges int       `json:"additional_charges_total"`
	CompletedAt       time.Time `json:"completed_at"`
	PaymentDeferred   bool      `json:"payment_deferred"`
}

// BookingAmountAmendedEvent reports a post-completion amount change.
type BookingAmountAmendedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	PreviousAmount int       `json:"previous_amount"`
	NewAmount      int       `json:"new_amount"`
	AmendedAt      time.Time `json:"amended_at"`
}

// PaymentLinkIssuedEvent is emitted when a checkout session is created for an
// online card booking.
type PaymentLinkIssuedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	OrganizationID    uuid.UUID `json:"organization_id"`
	CustomerID        uuid.UUID `json:"customer_id"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	Amount            int       `json:"amount"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// PaymentCompletedEvent is emitted by the Stripe webhook handler.
type PaymentCompletedEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	OrganizationID    uuid.UUID `json:"organization_id"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	Amount            int       `json:"amount"`
	PaidAt            time.Time `json:"paid_at"`
}

// PaymentExpiredEvent is emitted when a checkout session lapses unpaid.
type PaymentExpiredEvent struct {
	BookingID         uuid.UUID `json:"booking_id"`
	OrganizationID    uuid.UUID `json:"organization_id"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	ExpiredAt         time.Time `json:"expired_at"`
}

// NotificationRequestedEvent tells the notification worker to deliver a
// customer-facing message over the hybrid channel chain.
type NotificationRequestedEvent struct {
	BookingID      uuid.UUID              `json:"booking_id"`
	OrganizationID uuid.UUID              `json:"organization_id"`
	CustomerID     uuid.UUID              `json:"customer_id"`
	Type           enums.NotificationType `json:"type"`
}
