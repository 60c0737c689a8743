package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
)

type stubCatalogRepo struct {
	created  *models.Service
	services map[uuid.UUID]*models.Service
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) ListActive(ctx context.Context, orgID uuid.UUID) ([]models.Service, error) {
	return nil, nil
}

func (s *stubCatalogRepo) List(ctx context.Context, orgID uuid.UUID, filters ServiceFilters) ([]models.Service, error) {
	return nil, nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, orgID, serviceID uuid.UUID) (*models.Service, error) {
	if svc, ok := s.services[serviceID]; ok {
		return svc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.Service, error) {
	return nil, nil
}

func (s *stubCatalogRepo) FindOptionsByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.ServiceOption, error) {
	return nil, nil
}

func (s *stubCatalogRepo) Create(ctx context.Context, service *models.Service) (*models.Service, error) {
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	s.created = service
	return service, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, service *models.Service) error { return nil }

func (s *stubCatalogRepo) ReplaceTiers(ctx context.Context, serviceID uuid.UUID, tiers []models.ServiceDiscountTier) error {
	return nil
}

func (s *stubCatalogRepo) ReplaceOptions(ctx context.Context, serviceID uuid.UUID, options []models.ServiceOption) error {
	return nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, orgID, serviceID uuid.UUID) error { return nil }

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newCatalogService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func rate(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestCreateService(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc := newCatalogService(t, repo)

	created, err := svc.Create(context.Background(), uuid.New(), ServiceInput{
		Title:     "AC cleaning",
		BasePrice: 12000,
		Tiers: []TierInput{
			{MinQuantity: 2, DiscountRate: rate("0.05")},
			{MinQuantity: 4, DiscountRate: rate("0.12")},
		},
		Options: []OptionInput{{Title: "Antimold coating", Price: 2000}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("missing id")
	}
	if len(repo.created.DiscountTiers) != 2 || len(repo.created.Options) != 1 {
		t.Fatalf("tiers/options not persisted: %+v", repo.created)
	}
}

func TestCreateRejectsZeroQuantityTier(t *testing.T) {
	svc := newCatalogService(t, &stubCatalogRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), ServiceInput{
		Title:     "Bad tiers",
		BasePrice: 1000,
		Tiers:     []TierInput{{MinQuantity: 0, DiscountAmount: 100}},
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsDuplicateTierQuantity(t *testing.T) {
	svc := newCatalogService(t, &stubCatalogRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), ServiceInput{
		Title:     "Overlap",
		BasePrice: 1000,
		Tiers: []TierInput{
			{MinQuantity: 2, DiscountAmount: 100},
			{MinQuantity: 2, DiscountAmount: 200},
		},
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsRateOutOfRange(t *testing.T) {
	svc := newCatalogService(t, &stubCatalogRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), ServiceInput{
		Title:     "Too generous",
		BasePrice: 1000,
		Tiers:     []TierInput{{MinQuantity: 2, DiscountRate: rate("1.0")}},
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsAmountAndRateTogether(t *testing.T) {
	svc := newCatalogService(t, &stubCatalogRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), ServiceInput{
		Title:     "Both",
		BasePrice: 1000,
		Tiers:     []TierInput{{MinQuantity: 2, DiscountAmount: 100, DiscountRate: rate("0.1")}},
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUnknownServiceIsNotFound(t *testing.T) {
	svc := newCatalogService(t, &stubCatalogRepo{})

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), ServiceInput{
		Title:     "Missing",
		BasePrice: 500,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
