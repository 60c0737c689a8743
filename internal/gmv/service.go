package gmv

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// ListFilters narrow the audit trail listing.
type ListFilters struct {
	Action    *enums.GMVAuditAction
	BookingID *uuid.UUID
}

// EntryList wraps audit entries plus the next page cursor.
type EntryList struct {
	Entries    []models.GMVAuditLog `json:"entries"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// MonthlySummary is the GMV figure reported for one calendar month.
type MonthlySummary struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Total int64 `json:"total"`
}

// Service exposes the read side of the audit trail. Writes happen inside
// booking transactions through Repository.InsertTx.
type Service interface {
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*EntryList, error)
	History(ctx context.Context, orgID, bookingID uuid.UUID) ([]models.GMVAuditLog, error)
	Monthly(ctx context.Context, orgID uuid.UUID, year, month int) (*MonthlySummary, error)
}

type service struct {
	repo Repository
}

// NewService builds the GMV audit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gmv repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*EntryList, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	list, err := s.repo.List(ctx, orgID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gmv entries")
	}
	return list, nil
}

func (s *service) History(ctx context.Context, orgID, bookingID uuid.UUID) ([]models.GMVAuditLog, error) {
	if orgID == uuid.Nil || bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and booking id required")
	}
	rows, err := s.repo.ListByBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gmv history")
	}
	return rows, nil
}

func (s *service) Monthly(ctx context.Context, orgID uuid.UUID, year, month int) (*MonthlySummary, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if year < 2000 || month < 1 || month > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid year or month")
	}
	total, err := s.repo.MonthlyTotal(ctx, orgID, year, month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum monthly gmv")
	}
	return &MonthlySummary{Year: year, Month: month, Total: total}, nil
}
