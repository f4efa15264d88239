package rtde

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

type CountWrite struct {
	ItemID string
	Value  model.Count
}

type Repository interface {
	// ReplaceSession deletes any session held by s.UserID and inserts s with
	// one empty entry per item, in one transaction.
	ReplaceSession(ctx context.Context, s *model.RTDESession, items []model.CatalogItem) error
	FindByID(ctx context.Context, id string) (*model.RTDESession, error)
	FindByUser(ctx context.Context, userID string) (*model.RTDESession, error)
	ListEntries(ctx context.Context, sessionID string) ([]model.RTDEEntry, error)
	GetEntry(ctx context.Context, sessionID, itemID string) (*model.RTDEEntry, error)
	// WriteCounts upserts every write and then stores s, all in one transaction.
	WriteCounts(ctx context.Context, s *model.RTDESession, writes []CountWrite, at time.Time) error
	// AssignDefaults sets every unset count to zero and stores s, in one transaction.
	AssignDefaults(ctx context.Context, s *model.RTDESession, at time.Time) (int64, error)
	SetPulled(ctx context.Context, sessionID, itemID string, pulled bool, at time.Time) error
	UpdateSession(ctx context.Context, s *model.RTDESession) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ItemExists(ctx context.Context, itemID string) (bool, error)
}
