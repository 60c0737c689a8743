package drafts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
)

type stubDraftStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubDraftStore() *stubDraftStore {
	return &stubDraftStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubDraftStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (s *stubDraftStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	s.ttls[key] = ttl
	return nil
}

func (s *stubDraftStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
		delete(s.ttls, key)
	}
	return nil
}

func (s *stubDraftStore) DraftKey(orgID, visitorID string) string {
	return "hs:draft:" + orgID + ":" + visitorID
}

func newDraftService(t *testing.T, store *stubDraftStore, ttl time.Duration) Service {
	t.Helper()
	svc, err := NewService(store, ttl)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := newStubDraftStore()
	svc := newDraftService(t, store, time.Hour)
	orgID := uuid.New()

	payload := json.RawMessage(`{"selected_date":"2026-09-15","services":[{"quantity":3}]}`)
	if err := svc.Save(context.Background(), orgID, "visitor-1", payload); err != nil {
		t.Fatalf("save: %v", err)
	}

	draft, err := svc.Get(context.Background(), orgID, "visitor-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if draft.OrganizationID != orgID || draft.VisitorID != "visitor-1" {
		t.Errorf("draft identity = %s/%s", draft.OrganizationID, draft.VisitorID)
	}
	if string(draft.Payload) != string(payload) {
		t.Errorf("payload = %s", draft.Payload)
	}
	if draft.SavedAt.IsZero() {
		t.Error("saved_at not stamped")
	}
}

func TestSaveRefreshesTTL(t *testing.T) {
	store := newStubDraftStore()
	svc := newDraftService(t, store, 30*time.Minute)
	orgID := uuid.New()

	if err := svc.Save(context.Background(), orgID, "visitor-1", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	key := store.DraftKey(orgID.String(), "visitor-1")
	if store.ttls[key] != 30*time.Minute {
		t.Errorf("ttl = %s, want 30m", store.ttls[key])
	}
}

func TestSaveRejectsInvalidJSON(t *testing.T) {
	store := newStubDraftStore()
	svc := newDraftService(t, store, time.Hour)

	err := svc.Save(context.Background(), uuid.New(), "visitor-1", json.RawMessage(`{not json`))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestGetMissingDraftIsNotFound(t *testing.T) {
	store := newStubDraftStore()
	svc := newDraftService(t, store, time.Hour)

	_, err := svc.Get(context.Background(), uuid.New(), "visitor-unknown")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestClearRemovesDraft(t *testing.T) {
	store := newStubDraftStore()
	svc := newDraftService(t, store, time.Hour)
	orgID := uuid.New()

	if err := svc.Save(context.Background(), orgID, "visitor-1", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Clear(context.Background(), orgID, "visitor-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := svc.Get(context.Background(), orgID, "visitor-1"); pkgerrors.As(err) == nil {
		t.Fatal("draft survived clear")
	}
}
