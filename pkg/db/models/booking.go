package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
)

// AdditionalCharge is an ad-hoc line added at completion time (parts,
// surcharges, on-site extras). Stored as a jsonb array on the booking.
type AdditionalCharge struct {
	Label  string `json:"label"`
	Amount int    `json:"amount"`
}

type AdditionalCharges []AdditionalCharge

func (a AdditionalCharges) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AdditionalCharges) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("additional_charges: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, a)
}

// Booking is the header row. Service and option lines are snapshotted into
// BookingService and BookingOption at write time so later catalog edits never
// change historical bookings.
type Booking struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index"`
	CustomerID     uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index"`

	Status        enums.BookingStatus `gorm:"column:status;not null;default:pending"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:unpaid"`

	SelectedDate string `gorm:"column:selected_date;type:date;not null"`
	SelectedTime string `gorm:"column:selected_time;not null"`

	Preference1Date  *string `gorm:"column:preference1_date;type:date"`
	Preference1Time  *string `gorm:"column:preference1_time"`
	Preference2Date  *string `gorm:"column:preference2_date;type:date"`
	Preference2Time  *string `gorm:"column:preference2_time"`
	Preference3Date  *string `gorm:"column:preference3_date;type:date"`
	Preference3Time  *string `gorm:"column:preference3_time"`
	ChosenPreference *int    `gorm:"column:chosen_preference"`

	RequiresParking *bool   `gorm:"column:requires_parking"`
	CustomerNote    *string `gorm:"column:customer_note"`
	AdminNote       *string `gorm:"column:admin_note"`

	TotalPrice        int               `gorm:"column:total_price;not null"`
	Discount          int               `gorm:"column:discount;not null;default:0"`
	FinalAmount       *int              `gorm:"column:final_amount"`
	AdditionalCharges AdditionalCharges `gorm:"column:additional_charges;type:jsonb"`

	CheckoutSessionID *string    `gorm:"column:checkout_session_id"`
	CheckoutExpiresAt *time.Time `gorm:"column:checkout_expires_at"`

	GMVIncludedAt *time.Time `gorm:"column:gmv_included_at"`
	CollectedAt   *time.Time `gorm:"column:collected_at"`
	ConfirmedAt   *time.Time `gorm:"column:confirmed_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at"`
	ReminderSentAt *time.Time `gorm:"column:reminder_sent_at"`

	Services []BookingService `gorm:"foreignKey:BookingID"`
	Options  []BookingOption  `gorm:"foreignKey:BookingID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BookingService is a priced snapshot of one service line at booking time.
type BookingService struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	ServiceID uuid.UUID `gorm:"column:service_id;type:uuid;not null"`
	Title     string    `gorm:"column:title;not null"`
	UnitPrice int       `gorm:"column:unit_price;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Subtotal  int       `gorm:"column:subtotal;not null"`
	Discount  int       `gorm:"column:discount;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BookingOption is a priced snapshot of one selected option line.
type BookingOption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	OptionID  uuid.UUID `gorm:"column:option_id;type:uuid;not null"`
	Title     string    `gorm:"column:title;not null"`
	UnitPrice int       `gorm:"column:unit_price;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Subtotal  int       `gorm:"column:subtotal;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
