package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TierInput is one quantity-discount tier in a service write.
type TierInput struct {
	MinQuantity    int              `json:"min_quantity" validate:"required,min=1"`
	DiscountAmount int              `json:"discount_amount" validate:"min=0"`
	DiscountRate   *decimal.Decimal `json:"discount_rate,omitempty"`
}

// OptionInput is one add-on option in a service write.
type OptionInput struct {
	Title  string `json:"title" validate:"required"`
	Price  int    `json:"price" validate:"min=0"`
	Active *bool  `json:"active,omitempty"`
}

// ServiceInput carries an admin create/update for a catalog service.
type ServiceInput struct {
	Title           string        `json:"title" validate:"required"`
	BasePrice       int           `json:"base_price" validate:"min=0"`
	DurationMinutes int           `json:"duration_minutes" validate:"min=0"`
	Category        string        `json:"category"`
	Active          *bool         `json:"active,omitempty"`
	Tiers           []TierInput   `json:"tiers" validate:"dive"`
	Options         []OptionInput `json:"options" validate:"dive"`
}

// ServiceFilters narrow the admin catalog listing.
type ServiceFilters struct {
	Category   string
	ActiveOnly bool
}

// DeleteInput identifies a catalog row for removal.
type DeleteInput struct {
	OrganizationID uuid.UUID
	ServiceID      uuid.UUID
}
