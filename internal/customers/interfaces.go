package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

// Repository defines persistence operations for the customers table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByContact(ctx context.Context, orgID uuid.UUID, email, phone string) (*models.Customer, error)
	FindByID(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customerID uuid.UUID, updates map[string]any) error
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params, query string) (*CustomerList, error)
	ReassignBookings(ctx context.Context, fromCustomerID, toCustomerID uuid.UUID) error
	MarkMerged(ctx context.Context, customerID, mergedInto uuid.UUID) error
}

// OrganizationFinder confirms the target organization exists before a secure
// customer create is allowed.
type OrganizationFinder interface {
	Exists(ctx context.Context, orgID uuid.UUID) (bool, error)
}
