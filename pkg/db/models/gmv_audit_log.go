package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
)

// GMVAuditLog is append-only. Every completion or post-completion amendment
// writes a new row; existing rows are never updated or deleted.
type GMVAuditLog struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID            `gorm:"column:organization_id;type:uuid;not null;index"`
	BookingID      uuid.UUID            `gorm:"column:booking_id;type:uuid;not null;index"`
	Action         enums.GMVAuditAction `gorm:"column:action;not null"`
	PreviousAmount *int                 `gorm:"column:previous_amount"`
	NewAmount      int                  `gorm:"column:new_amount;not null"`
	Reason         *string              `gorm:"column:reason"`
	Actor          string               `gorm:"column:actor;not null"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (GMVAuditLog) TableName() string { return "gmv_audit_logs" }
