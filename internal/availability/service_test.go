package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
)

type stubAvailabilityRepo struct {
	taken    bool
	occupied map[string][]string
	err      error
}

func (s *stubAvailabilityRepo) SlotTaken(ctx context.Context, orgID uuid.UUID, date, timeSlot string) (bool, error) {
	return s.taken, s.err
}

func (s *stubAvailabilityRepo) OccupiedSlots(ctx context.Context, orgID uuid.UUID, from, to string) (map[string][]string, error) {
	return s.occupied, s.err
}

func TestIsSlotFree(t *testing.T) {
	svc, err := NewService(&stubAvailabilityRepo{taken: false})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	free, err := svc.IsSlotFree(context.Background(), uuid.New(), "2026-04-01", "10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !free {
		t.Fatal("expected free slot")
	}
}

func TestIsSlotFreeOccupied(t *testing.T) {
	svc, _ := NewService(&stubAvailabilityRepo{taken: true})

	free, err := svc.IsSlotFree(context.Background(), uuid.New(), "2026-04-01", "10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if free {
		t.Fatal("expected occupied slot")
	}
}

func TestIsSlotFreeRejectsBadDate(t *testing.T) {
	svc, _ := NewService(&stubAvailabilityRepo{})

	_, err := svc.IsSlotFree(context.Background(), uuid.New(), "01/04/2026", "10:00")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOccupancyRejectsInvertedRange(t *testing.T) {
	svc, _ := NewService(&stubAvailabilityRepo{})

	_, err := svc.Occupancy(context.Background(), uuid.New(), "2026-04-10", "2026-04-01")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOccupancyPassthrough(t *testing.T) {
	want := map[string][]string{"2026-04-01": {"10:00", "14:00"}}
	svc, _ := NewService(&stubAvailabilityRepo{occupied: want})

	got, err := svc.Occupancy(context.Background(), uuid.New(), "2026-04-01", "2026-04-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got["2026-04-01"]) != 2 {
		t.Fatalf("occupancy = %v, want %v", got, want)
	}
}
