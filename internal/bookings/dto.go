package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
)

// ServiceChoice is one service plus quantity in a booking request.
type ServiceChoice struct {
	ServiceID uuid.UUID `json:"service_id"`
	Quantity  int       `json:"quantity"`
}

// OptionChoice is one add-on option plus quantity in a booking request.
type OptionChoice struct {
	OptionID uuid.UUID `json:"option_id"`
	Quantity int       `json:"quantity"`
}

// Preference is one ranked alternative slot offered by the customer.
type Preference struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ContactInput is the customer block of a booking request.
type ContactInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postal_code"`
	Address    string `json:"address"`
	Building   string `json:"building"`
	LineUserID string `json:"line_user_id"`
	AvatarURL  string `json:"avatar_url"`
}

// CreateInput is everything the booking writer needs for one submission.
type CreateInput struct {
	OrganizationID  uuid.UUID
	BookingID       uuid.UUID // client-generated, optional
	Contact         ContactInput
	Services        []ServiceChoice
	Options         []OptionChoice
	SelectedDate    string
	SelectedTime    string
	Preferences     []Preference // up to three ranked alternatives
	RequiresParking *bool
	CustomerNote    string
	PaymentMethod   enums.PaymentMethod
	Authenticated   bool
	WalkIn          bool // admin-entered booking, confirmed on creation
	Actor           string
	VisitorID       string // draft key, cleared after commit
}

// Summary is returned to the booking form after a successful write.
type Summary struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	Status        enums.BookingStatus `json:"status"`
	SelectedDate  string              `json:"selected_date"`
	SelectedTime  string              `json:"selected_time"`
	ServiceTitles string              `json:"service_titles"`
	TotalPrice    int                 `json:"total_price"`
	Discount      int                 `json:"discount"`
	FinalAmount   int                 `json:"final_amount"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email,omitempty"`
}

// ListFilters narrow the admin bookings list.
type ListFilters struct {
	Status   *enums.BookingStatus
	DateFrom string
	DateTo   string
	Query    string
}

// BookingSummary is one row of the admin bookings list.
type BookingSummary struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	Status        enums.BookingStatus `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	SelectedDate  string              `json:"selected_date"`
	SelectedTime  string              `json:"selected_time"`
	TotalPrice    int                 `json:"total_price"`
	Discount      int                 `json:"discount"`
	FinalAmount   *int                `json:"final_amount,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// BookingList wraps the paginated bookings plus the next page cursor.
type BookingList struct {
	Bookings   []BookingSummary `json:"bookings"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ApproveInput confirms a pending booking.
type ApproveInput struct {
	OrganizationID uuid.UUID
	BookingID      uuid.UUID
	// PreferenceIndex, when set (1..3), copies that ranked preference into
	// the authoritative slot.
	PreferenceIndex *int
	RequirePayment  bool
	Actor           string
}

// CancelInput cancels a booking from either side of the counter.
type CancelInput struct {
	OrganizationID uuid.UUID // nil for customer self-cancel
	BookingID      uuid.UUID
	Reason         string
	Actor          string
	ByCustomer     bool
}

// CompleteInput settles the work and its final amount.
type CompleteInput struct {
	OrganizationID    uuid.UUID
	BookingID         uuid.UUID
	AdditionalCharges []models.AdditionalCharge
	AdminNote         string
	// Reason is free text explaining the settled amount, kept on the
	// audit row.
	Reason string
	Actor  string
}

// AmendInput changes a completed booking's settled amount.
type AmendInput struct {
	OrganizationID uuid.UUID
	BookingID      uuid.UUID
	NewAmount      int
	Reason         string
	Actor          string
}

// CheckoutSession is the payment link handed to the customer.
type CheckoutSession struct {
	SessionID string    `json:"session_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Amount    int       `json:"amount"`
}
