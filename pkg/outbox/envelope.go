package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event: a staff email, "customer",
// or a worker name, scoped to a tenant when one applies.
type ActorRef struct {
	Actor          string     `json:"actor"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty"`
}

// PayloadEnvelope is the versioned payload stored in outbox_events and
// consumed by the notification worker. Data holds the event-specific body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
