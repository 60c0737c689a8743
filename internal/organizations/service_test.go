package organizations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
)

type fakeOrgRepo struct {
	org   *models.Organization
	saved models.SetDiscounts
}

func (f *fakeOrgRepo) FindBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	if f.org == nil || f.org.Slug != slug {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	return f.org, nil
}

func (f *fakeOrgRepo) FindByID(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	if f.org == nil || f.org.ID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}
	return f.org, nil
}

func (f *fakeOrgRepo) Exists(ctx context.Context, orgID uuid.UUID) (bool, error) {
	return f.org != nil && f.org.ID == orgID, nil
}

func (f *fakeOrgRepo) UpdateSetDiscounts(ctx context.Context, orgID uuid.UUID, sets models.SetDiscounts) error {
	f.saved = sets
	return nil
}

func mustRate(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestReplaceSetDiscountsAssignsIDs(t *testing.T) {
	repo := &fakeOrgRepo{org: &models.Organization{ID: uuid.New(), Slug: "tokyo-clean", Name: "Tokyo Clean"}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	saved, err := svc.ReplaceSetDiscounts(context.Background(), repo.org.ID, models.SetDiscounts{{
		Title:        "AC + range hood set",
		DiscountRate: mustRate("0.1"),
		ServiceIDs:   []uuid.UUID{uuid.New(), uuid.New()},
	}})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(saved) != 1 || saved[0].ID == uuid.Nil {
		t.Fatalf("saved = %+v, want generated id", saved)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("repo saved = %+v", repo.saved)
	}
}

func TestReplaceSetDiscountsValidation(t *testing.T) {
	repo := &fakeOrgRepo{org: &models.Organization{ID: uuid.New(), Slug: "tokyo-clean", Name: "Tokyo Clean"}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	serviceA, serviceB := uuid.New(), uuid.New()
	cases := []struct {
		name string
		set  models.SetDiscount
	}{
		{"blank title", models.SetDiscount{Title: " ", DiscountRate: mustRate("0.1"), ServiceIDs: []uuid.UUID{serviceA, serviceB}}},
		{"zero rate", models.SetDiscount{Title: "Set", ServiceIDs: []uuid.UUID{serviceA, serviceB}}},
		{"rate above one", models.SetDiscount{Title: "Set", DiscountRate: mustRate("1.2"), ServiceIDs: []uuid.UUID{serviceA, serviceB}}},
		{"single service", models.SetDiscount{Title: "Set", DiscountRate: mustRate("0.1"), ServiceIDs: []uuid.UUID{serviceA}}},
		{"duplicate services", models.SetDiscount{Title: "Set", DiscountRate: mustRate("0.1"), ServiceIDs: []uuid.UUID{serviceA, serviceA}}},
	}
	for _, tc := range cases {
		_, err := svc.ReplaceSetDiscounts(context.Background(), repo.org.ID, models.SetDiscounts{tc.set})
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: err = %v, want validation error", tc.name, err)
		}
	}
}

func TestReplaceSetDiscountsUnknownOrganization(t *testing.T) {
	repo := &fakeOrgRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.ReplaceSetDiscounts(context.Background(), uuid.New(), nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}
