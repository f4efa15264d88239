package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde/repository"
	"github.com/fekuna/omnipos-storeops-service/internal/testutil"
	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func seedSession(t *testing.T, repo *repository.PGRepository, id, userID string, expiresAt time.Time, items []model.CatalogItem) {
	t.Helper()
	s := &model.RTDESession{
		ID:        id,
		ScopeID:   "store-1",
		UserID:    userID,
		Status:    model.RTDEPhaseCounting,
		CreatedAt: base,
		UpdatedAt: base,
		ExpiresAt: expiresAt,
	}
	if err := repo.ReplaceSession(context.Background(), s, items); err != nil {
		t.Fatalf("Failed to seed session %s: %v", id, err)
	}
}

func TestSweeper_RemovesOnlyExpired(t *testing.T) {
	db := testutil.NewDB(t)
	item := testutil.SeedItem(t, db, model.ItemKindRTDE, "wrap", "Egg Wrap", 1, 10)
	repo := repository.NewPGRepository(db)
	ctx := context.Background()

	seedSession(t, repo, "stale", "staff-1", base.Add(-time.Minute), []model.CatalogItem{item})
	seedSession(t, repo, "live", "staff-2", base.Add(time.Hour), []model.CatalogItem{item})

	s := NewSweeper(repo, cache.NewMemoryCache(), time.Minute, logger.NewNop())
	s.now = func() time.Time { return base }

	deleted, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted session, got %d", deleted)
	}
	if got, _ := repo.FindByID(ctx, "stale"); got != nil {
		t.Errorf("Expected stale session to be removed")
	}
	if got, _ := repo.FindByID(ctx, "live"); got == nil {
		t.Errorf("Expected live session to remain")
	}
	if entries, _ := repo.ListEntries(ctx, "stale"); len(entries) != 0 {
		t.Errorf("Expected stale entries to cascade, got %d", len(entries))
	}
}

func TestSweeper_SkipsWhenLocked(t *testing.T) {
	db := testutil.NewDB(t)
	item := testutil.SeedItem(t, db, model.ItemKindRTDE, "wrap", "Egg Wrap", 1, 10)
	repo := repository.NewPGRepository(db)
	ctx := context.Background()
	seedSession(t, repo, "stale", "staff-1", base.Add(-time.Minute), []model.CatalogItem{item})

	mem := cache.NewMemoryCache()
	if ok, _ := mem.AcquireLock(ctx, lockKey, "other-instance", time.Minute); !ok {
		t.Fatalf("Failed to take the sweep lock")
	}

	s := NewSweeper(repo, mem, time.Minute, logger.NewNop())
	s.now = func() time.Time { return base }

	deleted, err := s.RunOnce(ctx)
	if err != nil || deleted != 0 {
		t.Errorf("Expected a skipped sweep, got %d (err %v)", deleted, err)
	}
	if got, _ := repo.FindByID(ctx, "stale"); got == nil {
		t.Errorf("Expected the session to survive a skipped sweep")
	}
}
