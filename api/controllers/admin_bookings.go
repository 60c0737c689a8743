package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/api/middleware"
	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/api/validators"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/bookings"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// AdminListBookings serves the dashboard booking table.
func AdminListBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := bookings.ListFilters{
			Query: r.URL.Query().Get("q"),
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseBookingStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if filters.DateFrom, err = validators.ParseQueryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateTo, err = validators.ParseQueryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		list, err := svc.List(r.Context(), orgID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type bookingLineView struct {
	ServiceID uuid.UUID `json:"service_id"`
	Title     string    `json:"title"`
	UnitPrice int       `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Subtotal  int       `json:"subtotal"`
	Discount  int       `json:"discount"`
}

type bookingOptionLineView struct {
	OptionID  uuid.UUID `json:"option_id"`
	Title     string    `json:"title"`
	UnitPrice int       `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Subtotal  int       `json:"subtotal"`
}

type preferenceView struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type bookingDetailView struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	CustomerID     uuid.UUID `json:"customer_id"`

	Status        enums.BookingStatus `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`

	SelectedDate string `json:"selected_date"`
	SelectedTime string `json:"selected_time"`

	Preferences      []preferenceView `json:"preferences,omitempty"`
	ChosenPreference *int             `json:"chosen_preference,omitempty"`

	RequiresParking *bool   `json:"requires_parking,omitempty"`
	CustomerNote    *string `json:"customer_note,omitempty"`
	AdminNote       *string `json:"admin_note,omitempty"`

	TotalPrice        int                       `json:"total_price"`
	Discount          int                       `json:"discount"`
	FinalAmount       *int                      `json:"final_amount,omitempty"`
	AdditionalCharges []models.AdditionalCharge `json:"additional_charges,omitempty"`

	CheckoutSessionID *string    `json:"checkout_session_id,omitempty"`
	CheckoutExpiresAt *time.Time `json:"checkout_expires_at,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`

	Services []bookingLineView       `json:"services"`
	Options  []bookingOptionLineView `json:"options"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func bookingToDetailView(booking *models.Booking) bookingDetailView {
	view := bookingDetailView{
		ID:                booking.ID,
		OrganizationID:    booking.OrganizationID,
		CustomerID:        booking.CustomerID,
		Status:            booking.Status,
		PaymentMethod:     booking.PaymentMethod,
		PaymentStatus:     booking.PaymentStatus,
		SelectedDate:      booking.SelectedDate,
		SelectedTime:      booking.SelectedTime,
		ChosenPreference:  booking.ChosenPreference,
		RequiresParking:   booking.RequiresParking,
		CustomerNote:      booking.CustomerNote,
		AdminNote:         booking.AdminNote,
		TotalPrice:        booking.TotalPrice,
		Discount:          booking.Discount,
		FinalAmount:       booking.FinalAmount,
		AdditionalCharges: booking.AdditionalCharges,
		CheckoutSessionID: booking.CheckoutSessionID,
		CheckoutExpiresAt: booking.CheckoutExpiresAt,
		ConfirmedAt:       booking.ConfirmedAt,
		CompletedAt:       booking.CompletedAt,
		CancelledAt:       booking.CancelledAt,
		CollectedAt:       booking.CollectedAt,
		Services:          make([]bookingLineView, 0, len(booking.Services)),
		Options:           make([]bookingOptionLineView, 0, len(booking.Options)),
		CreatedAt:         booking.CreatedAt,
		UpdatedAt:         booking.UpdatedAt,
	}

	prefs := []struct {
		date *string
		time *string
	}{
		{booking.Preference1Date, booking.Preference1Time},
		{booking.Preference2Date, booking.Preference2Time},
		{booking.Preference3Date, booking.Preference3Time},
	}
	for _, pref := range prefs {
		if pref.date == nil || pref.time == nil {
			continue
		}
		view.Preferences = append(view.Preferences, preferenceView{Date: *pref.date, Time: *pref.time})
	}

	for _, line := range booking.Services {
		view.Services = append(view.Services, bookingLineView{
			ServiceID: line.ServiceID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
			Discount:  line.Discount,
		})
	}
	for _, option := range booking.Options {
		view.Options = append(view.Options, bookingOptionLineView{
			OptionID:  option.OptionID,
			Title:     option.Title,
			UnitPrice: option.UnitPrice,
			Quantity:  option.Quantity,
			Subtotal:  option.Subtotal,
		})
	}
	return view
}

// AdminBookingDetail returns one booking with its priced lines.
func AdminBookingDetail(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Get(r.Context(), orgID, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingToDetailView(booking))
	}
}

// AdminCreateWalkIn records a phone or walk-in booking on behalf of a
// customer. The booking is confirmed immediately.
func AdminCreateWalkIn(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		var req createBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput(orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Actor = middleware.ActorFromContext(r.Context())
		input.WalkIn = true

		summary, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

type approveBookingRequest struct {
	PreferenceIndex *int `json:"preference_index,omitempty" validate:"omitempty,min=1,max=3"`
	RequirePayment  bool `json:"require_payment,omitempty"`
}

// AdminApproveBooking confirms a pending booking. When payment is required
// the response carries the checkout link to forward to the customer.
func AdminApproveBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req approveBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Approve(r.Context(), bookings.ApproveInput{
			OrganizationID:  orgID,
			BookingID:       bookingID,
			PreferenceIndex: req.PreferenceIndex,
			RequirePayment:  req.RequirePayment,
			Actor:           middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{"status": "approved"}
		if session != nil {
			payload["checkout"] = session
		}
		responses.WriteSuccess(w, payload)
	}
}

type adminCancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func AdminCancelBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req adminCancelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Cancel(r.Context(), bookings.CancelInput{
			OrganizationID: orgID,
			BookingID:      bookingID,
			Reason:         req.Reason,
			Actor:          middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

type additionalChargePayload struct {
	Label  string `json:"label" validate:"required"`
	Amount int    `json:"amount" validate:"min=0"`
}

type completeBookingRequest struct {
	AdditionalCharges []additionalChargePayload `json:"additional_charges,omitempty" validate:"dive"`
	AdminNote         string                    `json:"admin_note,omitempty"`
	Reason            string                    `json:"reason,omitempty"`
}

func AdminCompleteBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req completeBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		charges := make([]models.AdditionalCharge, 0, len(req.AdditionalCharges))
		for _, charge := range req.AdditionalCharges {
			charges = append(charges, models.AdditionalCharge{Label: charge.Label, Amount: charge.Amount})
		}

		err = svc.Complete(r.Context(), bookings.CompleteInput{
			OrganizationID:    orgID,
			BookingID:         bookingID,
			AdditionalCharges: charges,
			AdminNote:         req.AdminNote,
			Reason:            req.Reason,
			Actor:             middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "completed"})
	}
}

type amendBookingRequest struct {
	NewAmount int    `json:"new_amount" validate:"min=0"`
	Reason    string `json:"reason,omitempty"`
}

func AdminAmendBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req amendBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.AmendAmount(r.Context(), bookings.AmendInput{
			OrganizationID: orgID,
			BookingID:      bookingID,
			NewAmount:      req.NewAmount,
			Reason:         req.Reason,
			Actor:          middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "amended"})
	}
}

// AdminResendPaymentLink issues a fresh checkout session for a booking stuck
// in awaiting_payment.
func AdminResendPaymentLink(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		bookingID, err := validators.PathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.ResendPaymentLink(r.Context(), orgID, bookingID, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"checkout": session})
	}
}
