package bookings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) CreateServices(ctx context.Context, items []models.BookingService) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateOptions(ctx context.Context, items []models.BookingOption) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Options").
		Where("organization_id = ? AND id = ?", orgID, bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindAnyByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Options").
		Where("id = ?", bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("checkout_session_id = ?", sessionID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) SlotTaken(ctx context.Context, orgID uuid.UUID, date, timeSlot string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("organization_id = ? AND selected_date = ? AND selected_time = ? AND status <> ?",
			orgID, date, timeSlot, enums.BookingStatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, bookingID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, filters ListFilters) (*BookingList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("bookings.*, customers.name AS customer_name").
		Joins("JOIN customers ON customers.id = bookings.customer_id").
		Where("bookings.organization_id = ?", orgID)

	if filters.Status != nil {
		query = query.Where("bookings.status = ?", *filters.Status)
	}
	if filters.DateFrom != "" {
		query = query.Where("bookings.selected_date >= ?", filters.DateFrom)
	}
	if filters.DateTo != "" {
		query = query.Where("bookings.selected_date <= ?", filters.DateTo)
	}
	if trimmed := strings.TrimSpace(filters.Query); trimmed != "" {
		like := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where("LOWER(customers.name) LIKE ? OR LOWER(customers.email) LIKE ?", like, like)
	}
	if cursor != nil {
		query = query.Where(
			"(bookings.created_at < ?) OR (bookings.created_at = ? AND bookings.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	type row struct {
		models.Booking
		CustomerName string
	}
	var rows []row
	err = query.
		Order("bookings.created_at DESC").
		Order("bookings.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &BookingList{}
	pageSize := pagination.NormalizeLimit(params.Limit)
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for _, r := range rows {
		list.Bookings = append(list.Bookings, BookingSummary{
			ID:            r.ID,
			CustomerID:    r.CustomerID,
			CustomerName:  r.CustomerName,
			Status:        r.Status,
			PaymentMethod: r.PaymentMethod,
			PaymentStatus: r.PaymentStatus,
			SelectedDate:  r.SelectedDate,
			SelectedTime:  r.SelectedTime,
			TotalPrice:    r.TotalPrice,
			Discount:      r.Discount,
			FinalAmount:   r.FinalAmount,
			CreatedAt:     r.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (r *repository) FindExpiredAwaitingPayment(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND checkout_expires_at IS NOT NULL AND checkout_expires_at < ?",
			enums.BookingStatusAwaitingPayment, cutoff).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindConfirmedOn(ctx context.Context, date string) ([]models.Booking, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND selected_date = ? AND reminder_sent_at IS NULL",
			enums.BookingStatusConfirmed, date).
		Find(&rows).Error
	return rows, err
}
