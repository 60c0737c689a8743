package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/internal/catalog"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
)

// catalogAdapter narrows the catalog repository to the reads the booking
// writer needs.
type catalogAdapter struct {
	repo catalog.Repository
}

// NewCatalogReader adapts a catalog repository into a CatalogReader.
func NewCatalogReader(repo catalog.Repository) CatalogReader {
	return &catalogAdapter{repo: repo}
}

func (a *catalogAdapter) WithTx(tx *gorm.DB) CatalogReader {
	return &catalogAdapter{repo: a.repo.WithTx(tx)}
}

func (a *catalogAdapter) ServicesByIDs(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID) ([]models.Service, error) {
	return a.repo.FindByIDs(ctx, orgID, serviceIDs)
}

func (a *catalogAdapter) OptionsByIDs(ctx context.Context, orgID uuid.UUID, optionIDs []uuid.UUID) ([]models.ServiceOption, error) {
	return a.repo.FindOptionsByIDs(ctx, orgID, optionIDs)
}
