package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a purchasable offering owned by an organization. Bookings
// reference it only through snapshot fields, so edits never rewrite history.
type Service struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID  uuid.UUID             `gorm:"column:organization_id;type:uuid;not null;index"`
	Title           string                `gorm:"column:title;not null"`
	BasePrice       int                   `gorm:"column:base_price;not null"`
	DurationMinutes int                   `gorm:"column:duration_minutes;not null;default:60"`
	Category        *string               `gorm:"column:category"`
	Active          bool                  `gorm:"column:active;not null;default:true"`
	DiscountTiers   []ServiceDiscountTier `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Options         []ServiceOption       `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// ServiceDiscountTier is one quantity-break row: at or above MinQuantity the
// booking gets either a flat amount off or a rate off the service line.
// Exactly one of DiscountAmount/DiscountRate is meaningful per row.
type ServiceDiscountTier struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID      uuid.UUID        `gorm:"column:service_id;type:uuid;not null;index"`
	MinQuantity    int              `gorm:"column:min_quantity;not null"`
	DiscountAmount int              `gorm:"column:discount_amount;not null;default:0"`
	DiscountRate   *decimal.Decimal `gorm:"column:discount_rate;type:numeric(5,4)"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
}

// ServiceOption is an add-on scoped to one service. Options are never
// discounted.
type ServiceOption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID uuid.UUID `gorm:"column:service_id;type:uuid;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	Price     int       `gorm:"column:price;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
