package milkorder

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

// FieldWrite is one count to store on an entry.
type FieldWrite struct {
	ItemID string
	Field  model.MilkField
	Value  model.Count
}

type Repository interface {
	// CreateSession inserts the session with one empty entry per item.
	CreateSession(ctx context.Context, s *model.MilkOrderSession, items []model.CatalogItem) error
	FindByID(ctx context.Context, id string) (*model.MilkOrderSession, error)
	FindByScopeDate(ctx context.Context, scopeID, date string) (*model.MilkOrderSession, error)
	ListEntries(ctx context.Context, sessionID string) ([]model.MilkOrderEntry, error)
	GetEntry(ctx context.Context, sessionID, itemID string) (*model.MilkOrderEntry, error)
	// WriteFields upserts every write and then stores s, all in one transaction.
	WriteFields(ctx context.Context, s *model.MilkOrderSession, writes []FieldWrite, at time.Time) error
	UpdateSession(ctx context.Context, s *model.MilkOrderSession) error
	ListCompleted(ctx context.Context, scopeID string, page, pageSize int) ([]model.MilkOrderSession, int, error)
	ItemExists(ctx context.Context, itemID string) (bool, error)
}
