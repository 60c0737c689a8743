package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/api/middleware"
	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/api/validators"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/customers"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// AdminListCustomers serves the dashboard customer table with optional
// name/email/phone search.
func AdminListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		list, err := svc.List(r.Context(), orgID, params, r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type customerDetailView struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           *string    `json:"email,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	PostalCode      *string    `json:"postal_code,omitempty"`
	Address         *string    `json:"address,omitempty"`
	AddressBuilding *string    `json:"address_building,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	LineLinked      bool       `json:"line_linked"`
	AvatarURL       *string    `json:"avatar_url,omitempty"`
	MergedInto      *uuid.UUID `json:"merged_into,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func customerToDetailView(customer *models.Customer) customerDetailView {
	return customerDetailView{
		ID:              customer.ID,
		Name:            customer.Name,
		Email:           customer.Email,
		Phone:           customer.Phone,
		PostalCode:      customer.PostalCode,
		Address:         customer.Address,
		AddressBuilding: customer.AddressBuilding,
		Notes:           customer.Notes,
		LineLinked:      customer.LineUserID != nil && *customer.LineUserID != "",
		AvatarURL:       customer.AvatarURL,
		MergedInto:      customer.MergedInto,
		CreatedAt:       customer.CreatedAt,
		UpdatedAt:       customer.UpdatedAt,
	}
}

func AdminCustomerDetail(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		customerID, err := validators.PathUUID(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), orgID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customerToDetailView(customer))
	}
}

type mergeCustomersRequest struct {
	PrimaryID   string `json:"primary_id" validate:"required"`
	DuplicateID string `json:"duplicate_id" validate:"required"`
}

// AdminMergeCustomers folds the duplicate customer into the primary one.
func AdminMergeCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		var req mergeCustomersRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		primaryID, err := uuid.Parse(req.PrimaryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "primary_id must be a UUID"))
			return
		}
		duplicateID, err := uuid.Parse(req.DuplicateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "duplicate_id must be a UUID"))
			return
		}

		err = svc.Merge(r.Context(), customers.MergeInput{
			OrganizationID: orgID,
			PrimaryID:      primaryID,
			DuplicateID:    duplicateID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "merged"})
	}
}
