package dto

import "github.com/fekuna/omnipos-storeops-service/internal/model"

type CatalogFilters struct {
	Kind        model.ItemKind
	IsActive    *bool
	SearchQuery string
	Page        int
	PageSize    int
}
