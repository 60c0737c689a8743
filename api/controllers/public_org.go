package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayuuum/HomeServiceAI-sub000/api/middleware"
	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/api/validators"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/availability"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/catalog"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/organizations"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
)

// OrgBranding serves the public booking form its tenant configuration.
func OrgBranding(orgs organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branding, err := orgs.PublicBranding(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, branding)
	}
}

type tierView struct {
	MinQuantity    int              `json:"min_quantity"`
	DiscountAmount int              `json:"discount_amount"`
	DiscountRate   *decimal.Decimal `json:"discount_rate,omitempty"`
}

type optionView struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Price int       `json:"price"`
}

type serviceView struct {
	ID              uuid.UUID    `json:"id"`
	Title           string       `json:"title"`
	BasePrice       int          `json:"base_price"`
	DurationMinutes int          `json:"duration_minutes"`
	Category        *string      `json:"category,omitempty"`
	Active          bool         `json:"active"`
	Tiers           []tierView   `json:"tiers"`
	Options         []optionView `json:"options"`
	CreatedAt       time.Time    `json:"created_at"`
}

func serviceToView(svc models.Service) serviceView {
	view := serviceView{
		ID:              svc.ID,
		Title:           svc.Title,
		BasePrice:       svc.BasePrice,
		DurationMinutes: svc.DurationMinutes,
		Category:        svc.Category,
		Active:          svc.Active,
		Tiers:           make([]tierView, 0, len(svc.DiscountTiers)),
		Options:         make([]optionView, 0, len(svc.Options)),
		CreatedAt:       svc.CreatedAt,
	}
	for _, tier := range svc.DiscountTiers {
		view.Tiers = append(view.Tiers, tierView{
			MinQuantity:    tier.MinQuantity,
			DiscountAmount: tier.DiscountAmount,
			DiscountRate:   tier.DiscountRate,
		})
	}
	for _, option := range svc.Options {
		if !option.Active {
			continue
		}
		view.Options = append(view.Options, optionView{
			ID:    option.ID,
			Title: option.Title,
			Price: option.Price,
		})
	}
	return view
}

func servicesToViews(services []models.Service) []serviceView {
	views := make([]serviceView, 0, len(services))
	for _, svc := range services {
		views = append(views, serviceToView(svc))
	}
	return views
}

type setDiscountView struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	ServiceIDs   []uuid.UUID     `json:"service_ids"`
}

func setDiscountsToViews(sets models.SetDiscounts) []setDiscountView {
	views := make([]setDiscountView, 0, len(sets))
	for _, set := range sets {
		views = append(views, setDiscountView{
			ID:           set.ID,
			Title:        set.Title,
			Description:  set.Description,
			DiscountRate: set.DiscountRate,
			ServiceIDs:   set.ServiceIDs,
		})
	}
	return views
}

// OrgServices lists the active catalog for the public booking form.
func OrgServices(orgs organizations.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := orgs.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		services, err := catalogSvc.PublicCatalog(r.Context(), org.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"services":      servicesToViews(services),
			"set_discounts": setDiscountsToViews(org.SetDiscounts),
		})
	}
}

// OrgAvailability returns the occupied slots per date for the requested window.
func OrgAvailability(orgs organizations.Service, availabilitySvc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := orgs.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if from == "" || to == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to query parameters required"))
			return
		}

		occupied, err := availabilitySvc.Occupancy(r.Context(), org.ID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"occupied": occupied})
	}
}

// AdminAvailability is the calendar view of the same occupancy data, scoped
// by the token's organization instead of a slug.
func AdminAvailability(availabilitySvc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if from == "" || to == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to query parameters required"))
			return
		}

		occupied, err := availabilitySvc.Occupancy(r.Context(), orgID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"occupied": occupied})
	}
}
