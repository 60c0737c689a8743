package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/api/middleware"
	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/api/validators"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/gmv"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type gmvEntryView struct {
	ID             uuid.UUID            `json:"id"`
	BookingID      uuid.UUID            `json:"booking_id"`
	Action         enums.GMVAuditAction `json:"action"`
	PreviousAmount *int                 `json:"previous_amount,omitempty"`
	NewAmount      int                  `json:"new_amount"`
	Actor          string               `json:"actor"`
	CreatedAt      time.Time            `json:"created_at"`
}

func gmvEntriesToViews(entries []models.GMVAuditLog) []gmvEntryView {
	views := make([]gmvEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, gmvEntryView{
			ID:             entry.ID,
			BookingID:      entry.BookingID,
			Action:         entry.Action,
			PreviousAmount: entry.PreviousAmount,
			NewAmount:      entry.NewAmount,
			Actor:          entry.Actor,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return views
}

// AdminListGMVEntries serves the append-only revenue audit trail.
func AdminListGMVEntries(svc gmv.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := gmv.ListFilters{}
		if raw := r.URL.Query().Get("action"); raw != "" {
			action, parseErr := enums.ParseGMVAuditAction(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid action filter"))
				return
			}
			filters.Action = &action
		}
		if raw := r.URL.Query().Get("booking_id"); raw != "" {
			bookingID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "booking_id must be a UUID"))
				return
			}
			filters.BookingID = &bookingID
		}

		list, err := svc.List(r.Context(), orgID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"entries":     gmvEntriesToViews(list.Entries),
			"next_cursor": list.NextCursor,
		})
	}
}

// AdminGMVMonthly reports the settled GMV for one calendar month.
func AdminGMVMonthly(svc gmv.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		now := time.Now().UTC()
		year, err := validators.ParseQueryInt(r, "year", now.Year(), 2000, 2200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.ParseQueryInt(r, "month", int(now.Month()), 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Monthly(r.Context(), orgID, year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AdminGMVHistory returns every audit row for one booking, oldest first.
func AdminGMVHistory(svc gmv.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.History(r.Context(), orgID, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"entries": gmvEntriesToViews(entries)})
	}
}
