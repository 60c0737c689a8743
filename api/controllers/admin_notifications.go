package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ayuuum/HomeServiceAI-sub000/api/middleware"
	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/api/validators"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/notifications"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type notificationView struct {
	ID        uuid.UUID                 `json:"id"`
	BookingID *uuid.UUID                `json:"booking_id,omitempty"`
	Type      enums.NotificationType    `json:"type"`
	Channel   enums.NotificationChannel `json:"channel"`
	Title     string                    `json:"title"`
	Body      string                    `json:"body"`
	ReadAt    *time.Time                `json:"read_at,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
}

func notificationsToViews(rows []models.Notification) []notificationView {
	views := make([]notificationView, 0, len(rows))
	for _, row := range rows {
		views = append(views, notificationView{
			ID:        row.ID,
			BookingID: row.BookingID,
			Type:      row.Type,
			Channel:   row.Channel,
			Title:     row.Title,
			Body:      row.Body,
			ReadAt:    row.ReadAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return views
}

// AdminListNotifications serves the dashboard feed.
func AdminListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unread_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), orgID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}, unreadOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"notifications": notificationsToViews(list.Notifications),
			"next_cursor":   list.NextCursor,
		})
	}
}

func AdminMarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())
		notificationID, err := validators.PathUUID(r, "notificationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), orgID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

func AdminMarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		if err := svc.MarkAllRead(r.Context(), orgID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

func AdminUnreadNotificationCount(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := middleware.OrganizationIDFromContext(r.Context())

		count, err := svc.UnreadCount(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
