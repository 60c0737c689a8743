package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a person who has interacted with an organization. Uniqueness is
// soft: matching happens on email or normalized phone, duplicates are folded
// by an explicit admin merge.
type Customer struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID  uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index"`
	Name            string     `gorm:"column:name;not null"`
	Email           *string    `gorm:"column:email"`
	Phone           *string    `gorm:"column:phone"`
	PostalCode      *string    `gorm:"column:postal_code"`
	Address         *string    `gorm:"column:address"`
	AddressBuilding *string    `gorm:"column:address_building"`
	Notes           *string    `gorm:"column:notes"`
	LineUserID      *string    `gorm:"column:line_user_id"`
	AvatarURL       *string    `gorm:"column:avatar_url"`
	MergedInto      *uuid.UUID `gorm:"column:merged_into;type:uuid"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
