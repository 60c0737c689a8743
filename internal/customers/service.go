package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service resolves booking contacts to customer rows and handles the admin
// customer operations.
type Service interface {
	Resolve(ctx context.Context, tx *gorm.DB, input ResolveInput) (uuid.UUID, error)
	Get(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, query string) (*CustomerList, error)
	Merge(ctx context.Context, input MergeInput) error
}

type service struct {
	repo Repository
	orgs OrganizationFinder
	tx   txRunner
}

// NewService builds the customers service.
func NewService(repo Repository, orgs OrganizationFinder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if orgs == nil {
		return nil, fmt.Errorf("organization finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, orgs: orgs, tx: tx}, nil
}

// Resolve finds or creates the customer for a booking. Callers already
// inside a transaction pass it so the create participates in the booking's
// atomicity.
func (s *service) Resolve(ctx context.Context, tx *gorm.DB, input ResolveInput) (uuid.UUID, error) {
	if input.OrganizationID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}

	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}

	if input.Authenticated && (input.Email != "" || input.Phone != "") {
		existing, err := repo.FindByContact(ctx, input.OrganizationID, input.Email, input.Phone)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match customer")
		}
		if existing != nil {
			if err := repo.Update(ctx, existing.ID, refreshUpdates(existing, input)); err != nil {
				return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh customer contact")
			}
			return existing.ID, nil
		}
	}

	return s.createSecure(ctx, repo, input)
}

// createSecure accepts only the allow-listed fields and verifies the target
// organization before inserting.
func (s *service) createSecure(ctx context.Context, repo Repository, input ResolveInput) (uuid.UUID, error) {
	exists, err := s.orgs.Exists(ctx, input.OrganizationID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify organization")
	}
	if !exists {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
	}

	customer := &models.Customer{
		OrganizationID: input.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
	}
	if v := strings.TrimSpace(strings.ToLower(input.Email)); v != "" {
		customer.Email = &v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		customer.Phone = &v
	}
	if v := strings.TrimSpace(input.PostalCode); v != "" {
		customer.PostalCode = &v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		customer.Address = &v
	}
	if v := strings.TrimSpace(input.Building); v != "" {
		customer.AddressBuilding = &v
	}
	if v := strings.TrimSpace(input.LineUserID); v != "" {
		customer.LineUserID = &v
	}
	if v := strings.TrimSpace(input.AvatarURL); v != "" {
		customer.AvatarURL = &v
	}

	created, err := repo.Create(ctx, customer)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return created.ID, nil
}

// refreshUpdates collects the contact fields a returning customer supplied
// this time around. Empty inputs never clobber stored values.
func refreshUpdates(existing *models.Customer, input ResolveInput) map[string]any {
	updates := map[string]any{}
	if v := strings.TrimSpace(strings.ToLower(input.Email)); v != "" {
		updates["email"] = v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		updates["phone"] = v
	}
	if v := strings.TrimSpace(input.PostalCode); v != "" {
		updates["postal_code"] = v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		updates["address"] = v
	}
	if v := strings.TrimSpace(input.Building); v != "" {
		updates["address_building"] = v
	}
	if v := strings.TrimSpace(input.LineUserID); v != "" {
		updates["line_user_id"] = v
	}
	if name := strings.TrimSpace(input.Name); name != "" && name != existing.Name {
		updates["name"] = name
	}
	return updates
}

func (s *service) Get(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, orgID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, params pagination.Params, query string) (*CustomerList, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	list, err := s.repo.List(ctx, orgID, params, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return list, nil
}

// Merge folds the duplicate into the primary: bookings are reassigned and
// the duplicate is tombstoned with merged_into, all in one transaction.
func (s *service) Merge(ctx context.Context, input MergeInput) error {
	if input.PrimaryID == uuid.Nil || input.DuplicateID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "primary and duplicate customer ids required")
	}
	if input.PrimaryID == input.DuplicateID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot merge a customer into itself")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		primary, err := repo.FindByID(ctx, input.OrganizationID, input.PrimaryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "primary customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load primary customer")
		}
		duplicate, err := repo.FindByID(ctx, input.OrganizationID, input.DuplicateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "duplicate customer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load duplicate customer")
		}
		if duplicate.MergedInto != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "customer already merged")
		}

		if err := repo.ReassignBookings(ctx, duplicate.ID, primary.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign bookings")
		}
		if err := repo.MarkMerged(ctx, duplicate.ID, primary.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark customer merged")
		}

		// Backfill contact gaps on the surviving row from the duplicate.
		updates := map[string]any{}
		if primary.Email == nil && duplicate.Email != nil {
			updates["email"] = *duplicate.Email
		}
		if primary.Phone == nil && duplicate.Phone != nil {
			updates["phone"] = *duplicate.Phone
		}
		if primary.LineUserID == nil && duplicate.LineUserID != nil {
			updates["line_user_id"] = *duplicate.LineUserID
		}
		if err := repo.Update(ctx, primary.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backfill primary contact")
		}
		return nil
	})
}
