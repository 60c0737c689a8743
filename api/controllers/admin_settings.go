package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayuuum/HomeServiceAI-sub000/api/middleware"
	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/api/validators"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/organizations"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
)

type setDiscountPayload struct {
	ID           string          `json:"id,omitempty"`
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description,omitempty"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	ServiceIDs   []string        `json:"service_ids" validate:"required,min=2"`
}

type replaceSetDiscountsRequest struct {
	SetDiscounts []setDiscountPayload `json:"set_discounts" validate:"dive"`
}

func (req *replaceSetDiscountsRequest) toModels() (models.SetDiscounts, error) {
	sets := make(models.SetDiscounts, 0, len(req.SetDiscounts))
	for _, payload := range req.SetDiscounts {
		set := models.SetDiscount{
			Title:        payload.Title,
			Description:  payload.Description,
			DiscountRate: payload.DiscountRate,
		}
		if raw := strings.TrimSpace(payload.ID); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "set discount id must be a UUID")
			}
			set.ID = id
		}
		for _, raw := range payload.ServiceIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_ids must be UUIDs")
			}
			set.ServiceIDs = append(set.ServiceIDs, id)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// AdminListSetDiscounts returns the organization's bundle discounts.
func AdminListSetDiscounts(orgs organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		sets, err := orgs.SetDiscounts(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"set_discounts": setDiscountsToViews(sets)})
	}
}

// AdminReplaceSetDiscounts swaps the whole bundle-discount list, mirroring
// how the settings screen saves it.
func AdminReplaceSetDiscounts(orgs organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		var req replaceSetDiscountsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sets, err := req.toModels()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := orgs.ReplaceSetDiscounts(r.Context(), orgID, sets)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"set_discounts": setDiscountsToViews(saved)})
	}
}
