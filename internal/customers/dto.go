package customers

import (
	"time"

	"github.com/google/uuid"
)

// ResolveInput carries the contact fields arriving with a booking request.
type ResolveInput struct {
	OrganizationID uuid.UUID
	Name           string
	Email          string
	Phone          string
	PostalCode     string
	Address        string
	Building       string
	LineUserID     string
	AvatarURL      string
	Authenticated  bool
}

// CustomerSummary is the list row returned to the admin dashboard.
type CustomerSummary struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	LineLinked   bool       `json:"line_linked"`
	MergedInto   *uuid.UUID `json:"merged_into,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	BookingCount int64      `json:"booking_count"`
}

// CustomerList wraps the paginated customers plus the next page cursor.
type CustomerList struct {
	Customers  []CustomerSummary `json:"customers"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// MergeInput folds the duplicate customer into the primary one.
type MergeInput struct {
	OrganizationID uuid.UUID
	PrimaryID      uuid.UUID
	DuplicateID    uuid.UUID
}
