package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/redis"
)

// Draft is the autosaved state of an in-progress booking form. The payload is
// stored as-is; the form owns its shape and the server only rounds-trips it.
type Draft struct {
	OrganizationID uuid.UUID       `json:"organization_id"`
	VisitorID      string          `json:"visitor_id"`
	Payload        json.RawMessage `json:"payload"`
	SavedAt        time.Time       `json:"saved_at"`
}

// Service persists booking drafts in Redis with a sliding TTL. Drafts are
// best-effort: losing one costs the visitor some retyping, nothing more.
type Service interface {
	Save(ctx context.Context, orgID uuid.UUID, visitorID string, payload json.RawMessage) error
	Get(ctx context.Context, orgID uuid.UUID, visitorID string) (*Draft, error)
	Clear(ctx context.Context, orgID uuid.UUID, visitorID string) error
}

type service struct {
	store redis.DraftStore
	ttl   time.Duration
	now   func() time.Time
}

// NewService builds the draft service. ttl sets how long an untouched draft
// survives; every save restarts the clock.
func NewService(store redis.DraftStore, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{store: store, ttl: ttl, now: time.Now}, nil
}

func (s *service) Save(ctx context.Context, orgID uuid.UUID, visitorID string, payload json.RawMessage) error {
	if orgID == uuid.Nil || visitorID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id and visitor id required")
	}
	if len(payload) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft payload required")
	}
	if !json.Valid(payload) {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft payload must be valid json")
	}

	draft := Draft{
		OrganizationID: orgID,
		VisitorID:      visitorID,
		Payload:        payload,
		SavedAt:        s.now().UTC(),
	}
	raw, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode draft")
	}

	key := s.store.DraftKey(orgID.String(), visitorID)
	if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store draft")
	}
	return nil
}

func (s *service) Get(ctx context.Context, orgID uuid.UUID, visitorID string) (*Draft, error) {
	if orgID == uuid.Nil || visitorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and visitor id required")
	}

	key := s.store.DraftKey(orgID.String(), visitorID)
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no draft for visitor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode draft")
	}
	return &draft, nil
}

func (s *service) Clear(ctx context.Context, orgID uuid.UUID, visitorID string) error {
	if orgID == uuid.Nil || visitorID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id and visitor id required")
	}
	key := s.store.DraftKey(orgID.String(), visitorID)
	if err := s.store.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete draft")
	}
	return nil
}
