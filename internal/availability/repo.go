package availability

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an availability repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// SlotTaken reports whether any non-cancelled booking occupies the slot.
// Cancelled bookings release their slot.
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

func (r *repository) OccupiedSlots(ctx context.Context, orgID uuid.UUID, from, to string) (map[string][]string, error) {
	type slotRow struct {
		SelectedDate string
		SelectedTime string
	}
	var rows []slotRow
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("selected_date", "selected_time").
		Where("organization_id = ? AND selected_date >= ? AND selected_date <= ? AND status <> ?",
			orgID, from, to, enums.BookingStatusCancelled).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	occupied := make(map[string][]string, len(rows))
	for _, row := range rows {
		occupied[row.SelectedDate] = append(occupied[row.SelectedDate], row.SelectedTime)
	}
	for date := range occupied {
		sort.Strings(occupied[date])
	}
	return occupied, nil
}
