// Package testutil opens an in-memory sqlite database carrying the production
// schema, plus fixtures shared by repository, usecase and handler tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/pkg/database"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	// A second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// SeedItem inserts an active catalog item and returns it.
func SeedItem(t *testing.T, db *sqlx.DB, kind model.ItemKind, id, name string, sortOrder, par int) model.CatalogItem {
	t.Helper()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	item := model.CatalogItem{
		BaseModel: model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Kind:      kind,
		Code:      fmt.Sprintf("%s-%s", kind.CodePrefix(), id),
		Name:      name,
		IsActive:  true,
		SortOrder: sortOrder,
		Par:       par,
	}
	_, err := db.NamedExec(`
		INSERT INTO catalog_items (id, kind, code, name, is_active, sort_order, par, created_at, updated_at)
		VALUES (:id, :kind, :code, :name, :is_active, :sort_order, :par, :created_at, :updated_at)
	`, item)
	if err != nil {
		t.Fatalf("Failed to seed item %s: %v", id, err)
	}
	return item
}

// Clock is a settable time source for usecases.
type Clock struct {
	T time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{T: t} }

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
