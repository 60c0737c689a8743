package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
)

const dateLayout = "2006-01-02"

// Repository exposes the slot occupancy queries.
type Repository interface {
	SlotTaken(ctx context.Context, orgID uuid.UUID, date, timeSlot string) (bool, error)
	OccupiedSlots(ctx context.Context, orgID uuid.UUID, from, to string) (map[string][]string, error)
}

// Service answers slot availability questions for the public booking form and
// the admin calendar. The booking writer re-checks inside its transaction;
// these reads are advisory.
type Service interface {
	IsSlotFree(ctx context.Context, orgID uuid.UUID, date, timeSlot string) (bool, error)
	Occupancy(ctx context.Context, orgID uuid.UUID, from, to string) (map[string][]string, error)
}

type service struct {
	repo Repository
}

// NewService builds the availability service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) IsSlotFree(ctx context.Context, orgID uuid.UUID, date, timeSlot string) (bool, error) {
	if orgID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if err := ValidateDate(date); err != nil {
		return false, err
	}
	if timeSlot == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "time slot required")
	}

	taken, err := s.repo.SlotTaken(ctx, orgID, date, timeSlot)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slot")
	}
	return !taken, nil
}

func (s *service) Occupancy(ctx context.Context, orgID uuid.UUID, from, to string) (map[string][]string, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if err := ValidateDate(from); err != nil {
		return nil, err
	}
	if err := ValidateDate(to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is inverted")
	}

	occupied, err := s.repo.OccupiedSlots(ctx, orgID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load occupancy")
	}
	return occupied, nil
}

// ValidateDate accepts calendar dates in YYYY-MM-DD form.
func ValidateDate(value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid date %q", value))
	}
	return nil
}
