package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/api/validators"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/bookings"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/organizations"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
)

type createBookingRequest struct {
	BookingID       string                   `json:"booking_id,omitempty"`
	Contact         bookings.ContactInput    `json:"contact"`
	Services        []bookings.ServiceChoice `json:"services" validate:"required,min=1"`
	Options         []optionChoicePayload    `json:"options,omitempty" validate:"dive"`
	SelectedDate    string                   `json:"selected_date" validate:"required"`
	SelectedTime    string                   `json:"selected_time" validate:"required"`
	Preferences     []bookings.Preference    `json:"preferences,omitempty" validate:"max=3"`
	RequiresParking *bool                    `json:"requires_parking,omitempty"`
	CustomerNote    string                   `json:"customer_note,omitempty"`
	PaymentMethod   string                   `json:"payment_method" validate:"required"`
	VisitorID       string                   `json:"visitor_id,omitempty"`
}

type optionChoicePayload struct {
	OptionID string `json:"option_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func (req *createBookingRequest) toInput(orgID uuid.UUID) (bookings.CreateInput, error) {
	input := bookings.CreateInput{
		OrganizationID:  orgID,
		Contact:         req.Contact,
		Services:        req.Services,
		SelectedDate:    req.SelectedDate,
		SelectedTime:    req.SelectedTime,
		Preferences:     req.Preferences,
		RequiresParking: req.RequiresParking,
		CustomerNote:    req.CustomerNote,
		VisitorID:       req.VisitorID,
	}

	if raw := strings.TrimSpace(req.BookingID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "booking_id must be a UUID")
		}
		input.BookingID = id
	}

	for _, opt := range req.Options {
		id, err := uuid.Parse(opt.OptionID)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "option_id must be a UUID")
		}
		input.Options = append(input.Options, bookings.OptionChoice{OptionID: id, Quantity: opt.Quantity})
	}

	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	input.PaymentMethod = method

	return input, nil
}

// CreateBooking is the public booking writer. The organization comes from the
// slug, never from the body.
func CreateBooking(orgs organizations.Service, svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := orgs.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput(org.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Actor = "customer"
		input.Authenticated = strings.TrimSpace(req.Contact.LineUserID) != ""

		summary, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

type customerCancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// CustomerCancelBooking handles self-service cancellation from the
// confirmation page. The booking id doubles as the access token.
func CustomerCancelBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req customerCancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Cancel(r.Context(), bookings.CancelInput{
			BookingID:  bookingID,
			Reason:     req.Reason,
			Actor:      "customer",
			ByCustomer: true,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}
