package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SetDiscount is a bundle deal: when a booking contains every listed
// service, the rate comes off those services' discounted subtotals.
type SetDiscount struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	ServiceIDs   []uuid.UUID     `json:"service_ids"`
}

type SetDiscounts []SetDiscount

func (s SetDiscounts) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *SetDiscounts) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("service_set_discounts: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, s)
}

// Organization is the tenant boundary. Every service, customer and booking
// belongs to exactly one organization.
type Organization struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug           string    `gorm:"column:slug;not null;uniqueIndex"`
	Name           string    `gorm:"column:name;not null"`
	LogoURL        *string   `gorm:"column:logo_url"`
	BrandColor     *string   `gorm:"column:brand_color"`
	Layout         string    `gorm:"column:layout;not null;default:'standard'"`
	AdminEmail     *string   `gorm:"column:admin_email"`
	PaymentEnabled bool      `gorm:"column:payment_enabled;not null;default:false"`

	// LINE Messaging API credentials; all empty when the channel is not set up.
	LineChannelID     *string `gorm:"column:line_channel_id"`
	LineChannelSecret *string `gorm:"column:line_channel_secret"`
	LineAccessToken   *string `gorm:"column:line_access_token"`

	CheckoutExpiryHours int `gorm:"column:checkout_expiry_hours;not null;default:24"`

	SetDiscounts SetDiscounts `gorm:"column:service_set_discounts;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LineConfigured reports whether the organization can receive LINE deliveries.
func (o Organization) LineConfigured() bool {
	return o.LineAccessToken != nil && strings.TrimSpace(*o.LineAccessToken) != ""
}
