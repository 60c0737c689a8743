package organizations

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

// Branding is the public configuration exposed to the booking form.
type Branding struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	LogoURL        *string   `json:"logo_url,omitempty"`
	BrandColor     *string   `json:"brand_color,omitempty"`
	Layout         string    `json:"layout"`
	PaymentEnabled bool      `json:"payment_enabled"`
	LineEnabled    bool      `json:"line_enabled"`
}

// Service resolves tenant organizations by slug or id.
type Service interface {
	BySlug(ctx context.Context, slug string) (*models.Organization, error)
	ByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	PublicBranding(ctx context.Context, slug string) (*Branding, error)
	SetDiscounts(ctx context.Context, orgID uuid.UUID) (models.SetDiscounts, error)
	ReplaceSetDiscounts(ctx context.Context, orgID uuid.UUID, sets models.SetDiscounts) (models.SetDiscounts, error)
}

type service struct {
	repo Repository
}

// NewService builds the organizations service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("organizations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) BySlug(ctx context.Context, slug string) (*models.Organization, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization slug required")
	}
	org, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return org, nil
}

func (s *service) ByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return org, nil
}

func (s *service) SetDiscounts(ctx context.Context, orgID uuid.UUID) (models.SetDiscounts, error) {
	org, err := s.ByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return org.SetDiscounts, nil
}

// ReplaceSetDiscounts swaps the organization's whole bundle-discount list,
// assigning ids to new entries. Replace-not-patch keeps the JSON column the
// single source of truth.
func (s *service) ReplaceSetDiscounts(ctx context.Context, orgID uuid.UUID, sets models.SetDiscounts) (models.SetDiscounts, error) {
	if _, err := s.ByID(ctx, orgID); err != nil {
		return nil, err
	}

	one := decimal.NewFromInt(1)
	for i := range sets {
		set := &sets[i]
		if strings.TrimSpace(set.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "set discount title required")
		}
		if !set.DiscountRate.IsPositive() || set.DiscountRate.GreaterThan(one) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "set discount rate must be between 0 and 1")
		}
		if len(dedupeIDs(set.ServiceIDs)) < 2 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "set discount needs at least two distinct services")
		}
		if set.ID == uuid.Nil {
			set.ID = uuid.New()
		}
	}

	if err := s.repo.UpdateSetDiscounts(ctx, orgID, sets); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update set discounts")
	}
	return sets, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *service) PublicBranding(ctx context.Context, slug string) (*Branding, error) {
	org, err := s.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &Branding{
		ID:             org.ID,
		Slug:           org.Slug,
		Name:           org.Name,
		LogoURL:        org.LogoURL,
		BrandColor:     org.BrandColor,
		Layout:         org.Layout,
		PaymentEnabled: org.PaymentEnabled,
		LineEnabled:    org.LineConfigured(),
	}, nil
}
