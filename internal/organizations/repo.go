package organizations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
)

// Repository defines persistence operations for organizations.
type Repository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Organization, error)
	FindByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	Exists(ctx context.Context, orgID uuid.UUID) (bool, error)
	UpdateSetDiscounts(ctx context.Context, orgID uuid.UUID, sets models.SetDiscounts) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an organizations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) FindByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).Where("id = ?", orgID).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) UpdateSetDiscounts(ctx context.Context, orgID uuid.UUID, sets models.SetDiscounts) error {
	return r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("id = ?", orgID).
		Update("service_set_discounts", sets).Error
}

func (r *repository) Exists(ctx context.Context, orgID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("id = ?", orgID).
		Count(&count).Error
	return count > 0, err
}
