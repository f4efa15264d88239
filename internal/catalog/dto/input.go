package dto

import (
	"github.com/fekuna/omnipos-storeops-service/internal/auth"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

type CreateItemInput struct {
	Actor     auth.UserContext
	Kind      model.ItemKind
	Name      string
	SortOrder int
	Par       int
}

type UpdateItemInput struct {
	Actor     auth.UserContext
	ID        string
	Name      string
	SortOrder int
	IsActive  bool
}

type SetParInput struct {
	Actor auth.UserContext
	ID    string
	Par   int
}

// SyncItemInput carries an item pushed by the upstream catalog service.
type SyncItemInput struct {
	ID        string
	Kind      model.ItemKind
	Code      string
	Name      string
	IsActive  bool
	SortOrder int
	Par       int
}
