package catalog

import (
	"context"

	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

type UseCase interface {
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.CatalogItem, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.CatalogItem, error)
	SetPar(ctx context.Context, input *dto.SetParInput) (*model.CatalogItem, error)
	GetItem(ctx context.Context, id string) (*model.CatalogItem, error)
	ListItems(ctx context.Context, filters *dto.CatalogFilters) ([]model.CatalogItem, int, error)
	SyncItem(ctx context.Context, input *dto.SyncItemInput) error
	ItemSource
}

// ItemSource is what the session workflows need from the catalog: the active
// items of one kind, in display order, with their par levels.
type ItemSource interface {
	ListActive(ctx context.Context, kind model.ItemKind) ([]model.CatalogItem, error)
}
