package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// phoneDigitsExpr strips the separators customers type into phone numbers so
// the comparison is symmetric: `090-1234-5678` stored and `09012345678`
// submitted (or the reverse) resolve to the same row. Works on both Postgres
// and the sqlite test driver.
const phoneDigitsExpr = "REPLACE(REPLACE(REPLACE(REPLACE(REPLACE(phone, '-', ''), ' ', ''), '(', ''), ')', ''), '+', '')"

// FindByContact matches on exact email OR phone, comparing digits-only
// renditions of both sides. Merged-away rows never match.
func (r *repository) FindByContact(ctx context.Context, orgID uuid.UUID, email, phone string) (*models.Customer, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	normalized := NormalizePhone(phone)
	if email == "" && normalized == "" {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Where("merged_into IS NULL")

	phoneCond := phoneDigitsExpr + " = ?"
	switch {
	case email != "" && normalized != "":
		query = query.Where("LOWER(email) = ? OR "+phoneCond, email, normalized)
	case email != "":
		query = query.Where("LOWER(email) = ?", email)
	default:
		query = query.Where(phoneCond, normalized)
	}

	var customer models.Customer
	err := query.Order("created_at ASC").First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByID(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) Update(ctx context.Context, customerID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, search string) (*CustomerList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Select("customers.*, (SELECT COUNT(*) FROM bookings WHERE bookings.customer_id = customers.id) AS booking_count").
		Where("customers.organization_id = ?", orgID).
		Where("customers.merged_into IS NULL")

	if trimmed := strings.TrimSpace(search); trimmed != "" {
		like := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where(
			"LOWER(customers.name) LIKE ? OR LOWER(customers.email) LIKE ? OR customers.phone LIKE ?",
			like, like, "%"+NormalizePhone(trimmed)+"%",
		)
	}
	if cursor != nil {
		query = query.Where(
			"(customers.created_at < ?) OR (customers.created_at = ? AND customers.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	type row struct {
		models.Customer
		BookingCount int64
	}
	var rows []row
	err = query.
		Order("customers.created_at DESC").
		Order("customers.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &CustomerList{}
	pageSize := pagination.NormalizeLimit(params.Limit)
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for _, r := range rows {
		list.Customers = append(list.Customers, CustomerSummary{
			ID:           r.ID,
			Name:         r.Name,
			Email:        r.Email,
			Phone:        r.Phone,
			LineLinked:   r.LineUserID != nil && *r.LineUserID != "",
			MergedInto:   r.MergedInto,
			CreatedAt:    r.CreatedAt,
			BookingCount: r.BookingCount,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (r *repository) ReassignBookings(ctx context.Context, fromCustomerID, toCustomerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("customer_id = ?", fromCustomerID).
		Update("customer_id", toCustomerID).Error
}

func (r *repository) MarkMerged(ctx context.Context, customerID, mergedInto uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("merged_into", mergedInto).Error
}
