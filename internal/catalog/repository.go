package catalog

import (
	"context"

	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.CatalogItem) error
	Update(ctx context.Context, item *model.CatalogItem) error
	// Upsert inserts or replaces by id; used when syncing from the upstream catalog.
	Upsert(ctx context.Context, item *model.CatalogItem) error
	FindByID(ctx context.Context, id string) (*model.CatalogItem, error)
	FindAll(ctx context.Context, filters *dto.CatalogFilters) ([]model.CatalogItem, int, error)
	ListActive(ctx context.Context, kind model.ItemKind) ([]model.CatalogItem, error)
	IsCodeUnique(ctx context.Context, code, excludeID string) (bool, error)
}
