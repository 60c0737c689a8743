package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// FeedList wraps the paginated notification feed plus the next page cursor.
type FeedList struct {
	Notifications []models.Notification `json:"notifications"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}

// Repository persists the in-app notification feed.
type Repository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, unreadOnly bool) (*FeedList, error)
	MarkRead(ctx context.Context, orgID, notificationID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, orgID uuid.UUID) error
	UnreadCount(ctx context.Context, orgID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, unreadOnly bool) (*FeedList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("organization_id = ?", orgID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Notification
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &FeedList{}
	pageSize := pagination.NormalizeLimit(params.Limit)
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	list.Notifications = rows
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (r *repository) MarkRead(ctx context.Context, orgID, notificationID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("organization_id = ? AND id = ? AND read_at IS NULL", orgID, notificationID).
		Update("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}

func (r *repository) MarkAllRead(ctx context.Context, orgID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("organization_id = ? AND read_at IS NULL", orgID).
		Update("read_at", time.Now().UTC()).Error
}

func (r *repository) UnreadCount(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("organization_id = ? AND read_at IS NULL", orgID).
		Count(&count).Error
	return count, err
}
