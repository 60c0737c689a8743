package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
)

// Repository defines persistence operations for the catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context, orgID uuid.UUID) ([]models.Service, error)
	List(ctx context.Context, orgID uuid.UUID, filters ServiceFilters) ([]models.Service, error)
	FindByID(ctx context.Context, orgID, serviceID uuid.UUID) (*models.Service, error)
	FindByIDs(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID) ([]models.Service, error)
	FindOptionsByIDs(ctx context.Context, orgID uuid.UUID, optionIDs []uuid.UUID) ([]models.ServiceOption, error)
	Create(ctx context.Context, service *models.Service) (*models.Service, error)
	Update(ctx context.Context, service *models.Service) error
	ReplaceTiers(ctx context.Context, serviceID uuid.UUID, tiers []models.ServiceDiscountTier) error
	ReplaceOptions(ctx context.Context, serviceID uuid.UUID, options []models.ServiceOption) error
	Delete(ctx context.Context, orgID, serviceID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActive(ctx context.Context, orgID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Preload("DiscountTiers").
		Preload("Options", "active = ?", true).
		Where("organization_id = ? AND active = ?", orgID, true).
		Order("created_at ASC").
		Find(&services).Error
	return services, err
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, filters ServiceFilters) ([]models.Service, error) {
	query := r.db.WithContext(ctx).
		Preload("DiscountTiers").
		Preload("Options").
		Where("organization_id = ?", orgID)
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var services []models.Service
	err := query.Order("created_at ASC").Find(&services).Error
	return services, err
}

func (r *repository) FindByID(ctx context.Context, orgID, serviceID uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.db.WithContext(ctx).
		Preload("DiscountTiers").
		Preload("Options").
		Where("organization_id = ? AND id = ?", orgID, serviceID).
		First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *repository) FindByIDs(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID) ([]models.Service, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	var services []models.Service
	err := r.db.WithContext(ctx).
		Preload("DiscountTiers").
		Where("organization_id = ? AND id IN ? AND active = ?", orgID, serviceIDs, true).
		Find(&services).Error
	return services, err
}

func (r *repository) FindOptionsByIDs(ctx context.Context, orgID uuid.UUID, optionIDs []uuid.UUID) ([]models.ServiceOption, error) {
	if len(optionIDs) == 0 {
		return nil, nil
	}
	var options []models.ServiceOption
	err := r.db.WithContext(ctx).
		Joins("JOIN services ON services.id = service_options.service_id").
		Where("services.organization_id = ? AND service_options.id IN ? AND service_options.active = ?",
			orgID, optionIDs, true).
		Find(&options).Error
	return options, err
}

func (r *repository) Create(ctx context.Context, service *models.Service) (*models.Service, error) {
	if err := r.db.WithContext(ctx).Create(service).Error; err != nil {
		return nil, err
	}
	return service, nil
}

func (r *repository) Update(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("id = ?", service.ID).
		Updates(map[string]any{
			"title":            service.Title,
			"base_price":       service.BasePrice,
			"duration_minutes": service.DurationMinutes,
			"category":         service.Category,
			"active":           service.Active,
		}).Error
}

func (r *repository) ReplaceTiers(ctx context.Context, serviceID uuid.UUID, tiers []models.ServiceDiscountTier) error {
	if err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Delete(&models.ServiceDiscountTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tiers).Error
}

func (r *repository) ReplaceOptions(ctx context.Context, serviceID uuid.UUID, options []models.ServiceOption) error {
	if err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Delete(&models.ServiceOption{}).Error; err != nil {
		return err
	}
	if len(options) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&options).Error
}

func (r *repository) Delete(ctx context.Context, orgID, serviceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, serviceID).
		Delete(&models.Service{}).Error
}
