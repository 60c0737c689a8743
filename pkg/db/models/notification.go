package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
)

// Notification is an in-app feed row for the admin dashboard. Channel records
// how (or whether) the customer copy was delivered.
type Notification struct {
	ID             uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID                 `gorm:"column:organization_id;type:uuid;not null;index"`
	BookingID      *uuid.UUID                `gorm:"column:booking_id;type:uuid;index"`
	Type           enums.NotificationType    `gorm:"column:type;not null"`
	Channel        enums.NotificationChannel `gorm:"column:channel;not null;default:none"`
	Title          string                    `gorm:"column:title;not null"`
	Body           string                    `gorm:"column:body;not null"`
	ReadAt         *time.Time                `gorm:"column:read_at"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
