package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the catalog reads used by the public form and the admin
// CRUD surface.
type Service interface {
	PublicCatalog(ctx context.Context, orgID uuid.UUID) ([]models.Service, error)
	List(ctx context.Context, orgID uuid.UUID, filters ServiceFilters) ([]models.Service, error)
	Get(ctx context.Context, orgID, serviceID uuid.UUID) (*models.Service, error)
	Create(ctx context.Context, orgID uuid.UUID, input ServiceInput) (*models.Service, error)
	Update(ctx context.Context, orgID, serviceID uuid.UUID, input ServiceInput) (*models.Service, error)
	Delete(ctx context.Context, input DeleteInput) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the catalog service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) PublicCatalog(ctx context.Context, orgID uuid.UUID) ([]models.Service, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	services, err := s.repo.ListActive(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active services")
	}
	return services, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, filters ServiceFilters) ([]models.Service, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	services, err := s.repo.List(ctx, orgID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	return services, nil
}

func (s *service) Get(ctx context.Context, orgID, serviceID uuid.UUID) (*models.Service, error) {
	svc, err := s.repo.FindByID(ctx, orgID, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, orgID uuid.UUID, input ServiceInput) (*models.Service, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	row := buildServiceRow(orgID, input)
	var created *models.Service
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		out, err := repo.Create(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service")
		}
		created = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, orgID, serviceID uuid.UUID, input ServiceInput) (*models.Service, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByID(ctx, orgID, serviceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
		}

		updated := buildServiceRow(orgID, input)
		updated.ID = existing.ID
		if err := repo.Update(ctx, updated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service")
		}

		tiers := make([]models.ServiceDiscountTier, 0, len(input.Tiers))
		for _, tier := range input.Tiers {
			tiers = append(tiers, models.ServiceDiscountTier{
				ServiceID:      existing.ID,
				MinQuantity:    tier.MinQuantity,
				DiscountAmount: tier.DiscountAmount,
				DiscountRate:   tier.DiscountRate,
			})
		}
		if err := repo.ReplaceTiers(ctx, existing.ID, tiers); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace discount tiers")
		}

		options := make([]models.ServiceOption, 0, len(input.Options))
		for _, opt := range input.Options {
			options = append(options, models.ServiceOption{
				ServiceID: existing.ID,
				Title:     strings.TrimSpace(opt.Title),
				Price:     opt.Price,
				Active:    opt.Active == nil || *opt.Active,
			})
		}
		if err := repo.ReplaceOptions(ctx, existing.ID, options); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace options")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orgID, serviceID)
}

func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.OrganizationID == uuid.Nil || input.ServiceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization and service ids required")
	}
	if err := s.repo.Delete(ctx, input.OrganizationID, input.ServiceID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete service")
	}
	return nil
}

func buildServiceRow(orgID uuid.UUID, input ServiceInput) *models.Service {
	row := &models.Service{
		OrganizationID:  orgID,
		Title:           strings.TrimSpace(input.Title),
		BasePrice:       input.BasePrice,
		DurationMinutes: input.DurationMinutes,
		Active:          input.Active == nil || *input.Active,
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		row.Category = &category
	}
	for _, tier := range input.Tiers {
		row.DiscountTiers = append(row.DiscountTiers, models.ServiceDiscountTier{
			MinQuantity:    tier.MinQuantity,
			DiscountAmount: tier.DiscountAmount,
			DiscountRate:   tier.DiscountRate,
		})
	}
	for _, opt := range input.Options {
		row.Options = append(row.Options, models.ServiceOption{
			Title:  strings.TrimSpace(opt.Title),
			Price:  opt.Price,
			Active: opt.Active == nil || *opt.Active,
		})
	}
	return row
}

// validateInput rejects tier shapes before they reach storage. The pricing
// engine tolerates junk for historical rows, but nothing new gets in.
func validateInput(input ServiceInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "service title required")
	}
	if input.BasePrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}

	one := decimal.NewFromInt(1)
	seen := map[int]bool{}
	for _, tier := range input.Tiers {
		if tier.MinQuantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier min quantity must be at least 1")
		}
		if seen[tier.MinQuantity] {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate tier for quantity %d", tier.MinQuantity))
		}
		seen[tier.MinQuantity] = true

		if tier.DiscountRate != nil {
			if tier.DiscountRate.IsNegative() || tier.DiscountRate.GreaterThanOrEqual(one) {
				return pkgerrors.New(pkgerrors.CodeValidation, "tier rate must be in [0, 1)")
			}
			if tier.DiscountAmount != 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "tier cannot carry both amount and rate")
			}
			continue
		}
		if tier.DiscountAmount <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier amount must be positive")
		}
	}

	for _, opt := range input.Options {
		if strings.TrimSpace(opt.Title) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "option title required")
		}
		if opt.Price < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "option price cannot be negative")
		}
	}
	return nil
}
