package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type stubCustomersRepo struct {
	existing   *models.Customer
	created    *models.Customer
	updates    map[string]any
	updatedID  uuid.UUID
	reassigned [2]uuid.UUID
	merged     [2]uuid.UUID
	byID       map[uuid.UUID]*models.Customer
}

func (s *stubCustomersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCustomersRepo) FindByContact(ctx context.Context, orgID uuid.UUID, email, phone string) (*models.Customer, error) {
	return s.existing, nil
}

func (s *stubCustomersRepo) FindByID(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error) {
	if c, ok := s.byID[customerID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomersRepo) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	s.created = customer
	return customer, nil
}

func (s *stubCustomersRepo) Update(ctx context.Context, customerID uuid.UUID, updates map[string]any) error {
	s.updatedID = customerID
	s.updates = updates
	return nil
}

func (s *stubCustomersRepo) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, query string) (*CustomerList, error) {
	return &CustomerList{}, nil
}

func (s *stubCustomersRepo) ReassignBookings(ctx context.Context, from, to uuid.UUID) error {
	s.reassigned = [2]uuid.UUID{from, to}
	return nil
}

func (s *stubCustomersRepo) MarkMerged(ctx context.Context, customerID, mergedInto uuid.UUID) error {
	s.merged = [2]uuid.UUID{customerID, mergedInto}
	return nil
}

type stubOrgFinder struct {
	exists bool
}

func (s *stubOrgFinder) Exists(ctx context.Context, orgID uuid.UUID) (bool, error) {
	return s.exists, nil
}

type stubTxRunner struct{}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newTestService(t *testing.T, repo Repository, orgs OrganizationFinder) Service {
	t.Helper()
	svc, err := NewService(repo, orgs, &stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestResolveMatchesExistingAndRefreshesContact(t *testing.T) {
	existingID := uuid.New()
	phone := "090-1234-5678"
	repo := &stubCustomersRepo{
		existing: &models.Customer{ID: existingID, Name: "Tanaka", Phone: &phone},
	}
	svc := newTestService(t, repo, &stubOrgFinder{exists: true})

	id, err := svc.Resolve(context.Background(), nil, ResolveInput{
		OrganizationID: uuid.New(),
		Name:           "Tanaka Taro",
		Phone:          "09012345678",
		Email:          "tanaka@example.com",
		Authenticated:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != existingID {
		t.Fatalf("resolved %s, want existing %s", id, existingID)
	}
	if repo.created != nil {
		t.Fatal("should not create when a match exists")
	}
	if repo.updates["email"] != "tanaka@example.com" {
		t.Fatalf("expected contact refresh, got %v", repo.updates)
	}
}

func TestResolveCreatesWhenNoMatch(t *testing.T) {
	repo := &stubCustomersRepo{}
	svc := newTestService(t, repo, &stubOrgFinder{exists: true})

	id, err := svc.Resolve(context.Background(), nil, ResolveInput{
		OrganizationID: uuid.New(),
		Name:           "Suzuki",
		Email:          "Suzuki@Example.com",
		Authenticated:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created == nil || repo.created.ID != id {
		t.Fatal("expected a created customer")
	}
	if repo.created.Email == nil || *repo.created.Email != "suzuki@example.com" {
		t.Fatalf("email not normalized: %v", repo.created.Email)
	}
}

func TestResolveUnauthenticatedAlwaysCreates(t *testing.T) {
	repo := &stubCustomersRepo{
		existing: &models.Customer{ID: uuid.New(), Name: "Existing"},
	}
	svc := newTestService(t, repo, &stubOrgFinder{exists: true})

	id, err := svc.Resolve(context.Background(), nil, ResolveInput{
		OrganizationID: uuid.New(),
		Name:           "Guest",
		Email:          "guest@example.com",
		Authenticated:  false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created == nil || repo.created.ID != id {
		t.Fatal("unauthenticated resolve must create, never match")
	}
}

func TestResolveRejectsUnknownOrganization(t *testing.T) {
	svc := newTestService(t, &stubCustomersRepo{}, &stubOrgFinder{exists: false})

	_, err := svc.Resolve(context.Background(), nil, ResolveInput{
		OrganizationID: uuid.New(),
		Name:           "Guest",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveRequiresName(t *testing.T) {
	svc := newTestService(t, &stubCustomersRepo{}, &stubOrgFinder{exists: true})

	_, err := svc.Resolve(context.Background(), nil, ResolveInput{
		OrganizationID: uuid.New(),
		Name:           "   ",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMergeReassignsAndTombstones(t *testing.T) {
	orgID := uuid.New()
	primary := &models.Customer{ID: uuid.New(), OrganizationID: orgID, Name: "Primary"}
	dupEmail := "dup@example.com"
	duplicate := &models.Customer{ID: uuid.New(), OrganizationID: orgID, Name: "Dup", Email: &dupEmail}
	repo := &stubCustomersRepo{
		byID: map[uuid.UUID]*models.Customer{primary.ID: primary, duplicate.ID: duplicate},
	}
	svc := newTestService(t, repo, &stubOrgFinder{exists: true})

	err := svc.Merge(context.Background(), MergeInput{
		OrganizationID: orgID,
		PrimaryID:      primary.ID,
		DuplicateID:    duplicate.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.reassigned != [2]uuid.UUID{duplicate.ID, primary.ID} {
		t.Fatalf("bookings not reassigned: %v", repo.reassigned)
	}
	if repo.merged != [2]uuid.UUID{duplicate.ID, primary.ID} {
		t.Fatalf("duplicate not tombstoned: %v", repo.merged)
	}
	if repo.updates["email"] != dupEmail {
		t.Fatalf("expected email backfill, got %v", repo.updates)
	}
}

func TestMergeRejectsSelfMerge(t *testing.T) {
	svc := newTestService(t, &stubCustomersRepo{}, &stubOrgFinder{exists: true})

	id := uuid.New()
	err := svc.Merge(context.Background(), MergeInput{PrimaryID: id, DuplicateID: id})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMergeRejectsAlreadyMerged(t *testing.T) {
	orgID := uuid.New()
	primary := &models.Customer{ID: uuid.New(), OrganizationID: orgID}
	already := uuid.New()
	duplicate := &models.Customer{ID: uuid.New(), OrganizationID: orgID, MergedInto: &already}
	repo := &stubCustomersRepo{
		byID: map[uuid.UUID]*models.Customer{primary.ID: primary, duplicate.ID: duplicate},
	}
	svc := newTestService(t, repo, &stubOrgFinder{exists: true})

	err := svc.Merge(context.Background(), MergeInput{
		OrganizationID: orgID,
		PrimaryID:      primary.ID,
		DuplicateID:    duplicate.ID,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
