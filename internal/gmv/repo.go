package gmv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// Repository writes and reads the GMV audit trail. Inserts go through the
// caller's transaction so the audit row commits with the booking change.
type Repository interface {
	InsertTx(tx *gorm.DB, entry models.GMVAuditLog) error
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*EntryList, error)
	ListByBooking(ctx context.Context, orgID, bookingID uuid.UUID) ([]models.GMVAuditLog, error)
	MonthlyTotal(ctx context.Context, orgID uuid.UUID, year int, month int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a GMV audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertTx(tx *gorm.DB, entry models.GMVAuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return tx.Create(&entry).Error
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*EntryList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.GMVAuditLog{}).
		Where("organization_id = ?", orgID)
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.BookingID != nil {
		query = query.Where("booking_id = ?", *filters.BookingID)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.GMVAuditLog
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &EntryList{}
	pageSize := pagination.NormalizeLimit(params.Limit)
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	list.Entries = rows
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (r *repository) ListByBooking(ctx context.Context, orgID, bookingID uuid.UUID) ([]models.GMVAuditLog, error) {
	var rows []models.GMVAuditLog
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND booking_id = ?", orgID, bookingID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// MonthlyTotal sums the latest settled amount per booking for entries created
// in the given month. An amended booking counts with its newest amount only.
func (r *repository) MonthlyTotal(ctx context.Context, orgID uuid.UUID, year, month int) (int64, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(new_amount), 0)
		FROM gmv_audit_logs g
		WHERE g.organization_id = ?
		  AND g.created_at >= ? AND g.created_at < ?
		  AND NOT EXISTS (
			SELECT 1 FROM gmv_audit_logs newer
			WHERE newer.booking_id = g.booking_id
			  AND newer.organization_id = g.organization_id
			  AND (newer.created_at > g.created_at
			       OR (newer.created_at = g.created_at AND newer.id > g.id))
		  )`, orgID, start, end).Scan(&total).Error
	return total, err
}
