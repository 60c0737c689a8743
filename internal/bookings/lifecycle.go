package bookings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/outbox/payloads"
)

// Approve confirms a pending booking. When the admin picks one of the ranked
// preferences, that slot becomes the authoritative one. With RequirePayment
// the booking parks in awaiting_payment behind a checkout session instead.
func (s *service) Approve(ctx context.Context, input ApproveInput) (*CheckoutSession, error) {
	var session *CheckoutSession
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := s.load(ctx, repo, input.OrganizationID, input.BookingID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending bookings can be approved")
		}

		now := s.now().UTC()
		updates := map[string]any{}

		if input.PreferenceIndex != nil {
			date, slot, err := pickPreference(booking, *input.PreferenceIndex)
			if err != nil {
				return err
			}
			if date != booking.SelectedDate || slot != booking.SelectedTime {
				taken, err := repo.SlotTaken(ctx, booking.OrganizationID, date, slot)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check preferred slot")
				}
				if taken {
					return pkgerrors.New(pkgerrors.CodeConflict, "preferred slot is already booked")
				}
				updates["selected_date"] = date
				updates["selected_time"] = slot
				booking.SelectedDate, booking.SelectedTime = date, slot
			}
			updates["chosen_preference"] = *input.PreferenceIndex
			booking.ChosenPreference = input.PreferenceIndex
		}

		actor := actorRef(input.Actor, booking.OrganizationID)

		if input.RequirePayment {
			org, err := s.orgs.ByID(ctx, booking.OrganizationID)
			if err != nil {
				return err
			}
			if !org.PaymentEnabled {
				return pkgerrors.New(pkgerrors.CodePrecondition, "online payment is not enabled for this organization")
			}
			session, err = s.payments.CreateSession(ctx, booking, org)
			if err != nil {
				return err
			}
			updates["status"] = enums.BookingStatusAwaitingPayment
			updates["payment_status"] = enums.PaymentStatusPending
			updates["checkout_session_id"] = session.SessionID
			updates["checkout_expires_at"] = session.ExpiresAt
			if err := repo.Update(ctx, booking.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
			}
			err = s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPaymentLinkIssued,
				AggregateType: enums.AggregateBooking,
				AggregateID:   booking.ID,
				Actor:         actor,
				Data: payloads.PaymentLinkIssuedEvent{
					BookingID:         booking.ID,
					OrganizationID:    booking.OrganizationID,
					CustomerID:        booking.CustomerID,
					CheckoutSessionID: session.SessionID,
					Amount:            session.Amount,
					ExpiresAt:         session.ExpiresAt,
				},
			})
			if err != nil {
				return err
			}
			return s.requestNotification(ctx, tx, booking, actor, enums.NotificationTypePaymentRequest)
		}

		updates["status"] = enums.BookingStatusConfirmed
		updates["confirmed_at"] = now
		if booking.GMVIncludedAt == nil {
			// Stamped exactly once, on the transition into confirmed.
			updates["gmv_included_at"] = now
		}
		if err := repo.Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}
		err = s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingConfirmed,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         actor,
			Data: payloads.BookingConfirmedEvent{
				BookingID:        booking.ID,
				OrganizationID:   booking.OrganizationID,
				CustomerID:       booking.CustomerID,
				SelectedDate:     booking.SelectedDate,
				SelectedTime:     booking.SelectedTime,
				ChosenPreference: booking.ChosenPreference,
				ConfirmedAt:      now,
			},
		})
		if err != nil {
			return err
		}
		return s.requestNotification(ctx, tx, booking, actor, enums.NotificationTypeBookingConfirmed)
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithBookingID(ctx, input.BookingID.String()), "booking approved")
	return session, nil
}

// Cancel moves a live booking to cancelled. The GMV stamp, if present, stays;
// cancellation after confirmation is reconciled in the audit trail, not by
// rewriting history.
func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var booking *models.Booking
		var err error
		if input.ByCustomer && input.OrganizationID == uuid.Nil {
			booking, err = repo.FindAnyByID(ctx, input.BookingID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
			}
		} else {
			booking, err = s.load(ctx, repo, input.OrganizationID, input.BookingID)
			if err != nil {
				return err
			}
		}
		if booking.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is already closed")
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":       enums.BookingStatusCancelled,
			"cancelled_at": now,
		}
		if err := repo.Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		cancelledBy := "admin"
		if input.ByCustomer {
			cancelledBy = "customer"
		}
		actor := actorRef(input.Actor, booking.OrganizationID)
		err = s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCancelled,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         actor,
			Data: payloads.BookingCancelledEvent{
				BookingID:      booking.ID,
				OrganizationID: booking.OrganizationID,
				CustomerID:     booking.CustomerID,
				CancelledAt:    now,
				CancelledBy:    cancelledBy,
				Reason:         strings.TrimSpace(input.Reason),
			},
		})
		if err != nil {
			return err
		}
		return s.requestNotification(ctx, tx, booking, actor, enums.NotificationTypeBookingCancelled)
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithBookingID(ctx, input.BookingID.String()), "booking cancelled")
	return nil
}

// Complete settles a confirmed booking. The final amount is the quoted total
// minus discount plus any ad-hoc charges added on site.
func (s *service) Complete(ctx context.Context, input CompleteInput) error {
	extraTotal := 0
	for _, charge := range input.AdditionalCharges {
		if strings.TrimSpace(charge.Label) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "additional charge needs a label")
		}
		extraTotal += charge.Amount
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := s.load(ctx, repo, input.OrganizationID, input.BookingID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only confirmed bookings can be completed")
		}

		now := s.now().UTC()
		finalAmount := booking.TotalPrice - booking.Discount + extraTotal
		if finalAmount < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "final amount cannot be negative")
		}

		deferred := booking.PaymentMethod.IsDeferred()
		updates := map[string]any{
			"status":             enums.BookingStatusCompleted,
			"completed_at":       now,
			"final_amount":       finalAmount,
			"additional_charges": models.AdditionalCharges(input.AdditionalCharges),
		}
		if note := strings.TrimSpace(input.AdminNote); note != "" {
			updates["admin_note"] = note
		}
		if !deferred {
			// On-site methods settle at the door; online card waits for the
			// payment link.
			updates["collected_at"] = now
			updates["payment_status"] = enums.PaymentStatusPaid
		}
		if err := repo.Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		entry := models.GMVAuditLog{
			OrganizationID: booking.OrganizationID,
			BookingID:      booking.ID,
			Action:         enums.GMVAuditActionCompleted,
			NewAmount:      finalAmount,
			Reason:         auditReason(input.Reason),
			Actor:          actorOrDefault(input.Actor, "admin"),
		}
		if booking.GMVIncludedAt != nil {
			// GMV was already counted when the booking confirmed, so
			// settling records a modification of the quoted amount.
			quoted := booking.TotalPrice - booking.Discount
			entry.Action = enums.GMVAuditActionModified
			entry.PreviousAmount = &quoted
		}
		if err := s.gmv.InsertTx(tx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert gmv audit entry")
		}

		actor := actorRef(input.Actor, booking.OrganizationID)
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCompleted,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         actor,
			Data: payloads.BookingCompletedEvent{
				BookingID:         booking.ID,
				OrganizationID:    booking.OrganizationID,
				CustomerID:        booking.CustomerID,
				FinalAmount:       finalAmount,
				AdditionalCharges: extraTotal,
				CompletedAt:       now,
				PaymentDeferred:   deferred,
			},
		})
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithBookingID(ctx, input.BookingID.String()), "booking completed")
	return nil
}

// AmendAmount corrects the settled amount of a completed booking and leaves a
// modified entry in the audit trail.
func (s *service) AmendAmount(ctx context.Context, input AmendInput) error {
	if input.NewAmount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := s.load(ctx, repo, input.OrganizationID, input.BookingID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed bookings can be amended")
		}
		if booking.FinalAmount == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking has no settled amount")
		}

		previous := *booking.FinalAmount
		if previous == input.NewAmount {
			return nil
		}

		now := s.now().UTC()
		if err := repo.Update(ctx, booking.ID, map[string]any{"final_amount": input.NewAmount}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		entry := models.GMVAuditLog{
			OrganizationID: booking.OrganizationID,
			BookingID:      booking.ID,
			Action:         enums.GMVAuditActionModified,
			PreviousAmount: &previous,
			NewAmount:      input.NewAmount,
			Reason:         auditReason(input.Reason),
			Actor:          actorOrDefault(input.Actor, "admin"),
		}
		if err := s.gmv.InsertTx(tx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert gmv audit entry")
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingAmountAmended,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         actorRef(input.Actor, booking.OrganizationID),
			Data: payloads.BookingAmountAmendedEvent{
				BookingID:      booking.ID,
				OrganizationID: booking.OrganizationID,
				PreviousAmount: previous,
				NewAmount:      input.NewAmount,
				AmendedAt:      now,
			},
		})
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithBookingID(ctx, input.BookingID.String()), "booking amount amended")
	return nil
}

// ResendPaymentLink replaces the checkout session of an awaiting_payment
// booking with a fresh one.
func (s *service) ResendPaymentLink(ctx context.Context, orgID, bookingID uuid.UUID, actor string) (*CheckoutSession, error) {
	var session *CheckoutSession
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := s.load(ctx, repo, orgID, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != enums.BookingStatusAwaitingPayment {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not awaiting payment")
		}

		org, err := s.orgs.ByID(ctx, booking.OrganizationID)
		if err != nil {
			return err
		}
		session, err = s.payments.CreateSession(ctx, booking, org)
		if err != nil {
			return err
		}
		updates := map[string]any{
			"checkout_session_id": session.SessionID,
			"checkout_expires_at": session.ExpiresAt,
		}
		if err := repo.Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		ref := actorRef(actor, booking.OrganizationID)
		err = s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentLinkIssued,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         ref,
			Data: payloads.PaymentLinkIssuedEvent{
				BookingID:         booking.ID,
				OrganizationID:    booking.OrganizationID,
				CustomerID:        booking.CustomerID,
				CheckoutSessionID: session.SessionID,
				Amount:            session.Amount,
				ExpiresAt:         session.ExpiresAt,
			},
		})
		if err != nil {
			return err
		}
		return s.requestNotification(ctx, tx, booking, ref, enums.NotificationTypePaymentRequest)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// PaymentCompleted is the checkout.session.completed path. It is idempotent:
// a replayed webhook for an already confirmed booking is a no-op.
func (s *service) PaymentCompleted(ctx context.Context, sessionID string, paidAt time.Time) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByCheckoutSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no booking for checkout session")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.Status != enums.BookingStatusAwaitingPayment {
			if booking.PaymentStatus == enums.PaymentStatusPaid {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not awaiting payment")
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":         enums.BookingStatusConfirmed,
			"payment_status": enums.PaymentStatusPaid,
			"collected_at":   paidAt.UTC(),
			"confirmed_at":   now,
		}
		if booking.GMVIncludedAt == nil {
			updates["gmv_included_at"] = now
		}
		if err := repo.Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		amount := booking.TotalPrice - booking.Discount
		actor := actorRef("stripe_webhook", booking.OrganizationID)
		err = s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCompleted,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         actor,
			Data: payloads.PaymentCompletedEvent{
				BookingID:         booking.ID,
				OrganizationID:    booking.OrganizationID,
				CheckoutSessionID: sessionID,
				Amount:            amount,
				PaidAt:            paidAt.UTC(),
			},
		})
		if err != nil {
			return err
		}
		return s.requestNotification(ctx, tx, booking, actor, enums.NotificationTypePaymentCompleted)
	})
}

// PaymentExpired handles a lapsed checkout session. A session that completed
// before the expiry event arrived is left alone.
func (s *service) PaymentExpired(ctx context.Context, sessionID string, expiredAt time.Time) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByCheckoutSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no booking for checkout session")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.Status != enums.BookingStatusAwaitingPayment {
			return nil
		}

		now := s.now().UTC()
		updates := map[string]any{
			"status":         enums.BookingStatusCancelled,
			"payment_status": enums.PaymentStatusUnpaid,
			"cancelled_at":   now,
		}
		if err := repo.Update(ctx, booking.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		actor := actorRef("stripe_webhook", booking.OrganizationID)
		err = s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentExpired,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         actor,
			Data: payloads.PaymentExpiredEvent{
				BookingID:         booking.ID,
				OrganizationID:    booking.OrganizationID,
				CheckoutSessionID: sessionID,
				ExpiredAt:         expiredAt.UTC(),
			},
		})
		if err != nil {
			return err
		}
		return s.requestNotification(ctx, tx, booking, actor, enums.NotificationTypePaymentExpired)
	})
}

func (s *service) load(ctx context.Context, repo Repository, orgID, bookingID uuid.UUID) (*models.Booking, error) {
	if orgID == uuid.Nil || bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and booking id required")
	}
	booking, err := repo.FindByID(ctx, orgID, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return booking, nil
}

func (s *service) requestNotification(ctx context.Context, tx *gorm.DB, booking *models.Booking, actor *outbox.ActorRef, notifType enums.NotificationType) error {
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   booking.ID,
		Actor:         actor,
		Data: payloads.NotificationRequestedEvent{
			BookingID:      booking.ID,
			OrganizationID: booking.OrganizationID,
			CustomerID:     booking.CustomerID,
			Type:           notifType,
		},
	})
}

func pickPreference(booking *models.Booking, index int) (string, string, error) {
	var date, slot *string
	switch index {
	case 1:
		date, slot = booking.Preference1Date, booking.Preference1Time
	case 2:
		date, slot = booking.Preference2Date, booking.Preference2Time
	case 3:
		date, slot = booking.Preference3Date, booking.Preference3Time
	default:
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "preference index must be between 1 and 3")
	}
	if date == nil || slot == nil {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "booking has no such preference")
	}
	return *date, *slot, nil
}

func actorOrDefault(actor, fallback string) string {
	if strings.TrimSpace(actor) == "" {
		return fallback
	}
	return actor
}

// auditReason keeps NULL in the audit row when no reason was given.
func auditReason(reason string) *string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
