package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The schema is kept to the subset of SQL shared by postgres and sqlite so the
// test suite runs the same DDL as production.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_items (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('milk', 'rtde')),
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		par INTEGER NOT NULL DEFAULT 0 CHECK (par >= 0),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_items_kind ON catalog_items (kind, is_active, sort_order)`,

	`CREATE TABLE IF NOT EXISTS milk_order_sessions (
		id TEXT PRIMARY KEY,
		scope_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		session_date TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('night_foh', 'night_boh', 'morning', 'on_order', 'completed')),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		night_foh_saved_at TIMESTAMP NULL,
		night_boh_saved_at TIMESTAMP NULL,
		morning_saved_at TIMESTAMP NULL,
		on_order_saved_at TIMESTAMP NULL,
		completed_at TIMESTAMP NULL,
		UNIQUE (scope_id, session_date)
	)`,
	`CREATE TABLE IF NOT EXISTS milk_order_entries (
		session_id TEXT NOT NULL REFERENCES milk_order_sessions (id) ON DELETE CASCADE,
		item_id TEXT NOT NULL REFERENCES catalog_items (id),
		foh INTEGER NULL CHECK (foh BETWEEN 0 AND 999),
		boh INTEGER NULL CHECK (boh BETWEEN 0 AND 999),
		current_boh INTEGER NULL CHECK (current_boh BETWEEN 0 AND 999),
		delivered INTEGER NULL CHECK (delivered BETWEEN 0 AND 999),
		delivery_method TEXT NULL CHECK (delivery_method IN ('boh_count', 'direct')),
		on_order INTEGER NULL CHECK (on_order BETWEEN 0 AND 999),
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, item_id)
	)`,

	`CREATE TABLE IF NOT EXISTS rtde_sessions (
		id TEXT PRIMARY KEY,
		scope_id TEXT NOT NULL,
		user_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL CHECK (status IN ('counting', 'pulling', 'completed')),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		counting_saved_at TIMESTAMP NULL,
		pulling_saved_at TIMESTAMP NULL,
		expires_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rtde_sessions_expires_at ON rtde_sessions (expires_at)`,
	`CREATE TABLE IF NOT EXISTS rtde_entries (
		session_id TEXT NOT NULL REFERENCES rtde_sessions (id) ON DELETE CASCADE,
		item_id TEXT NOT NULL REFERENCES catalog_items (id),
		counted INTEGER NULL CHECK (counted BETWEEN 0 AND 999),
		pulled BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, item_id)
	)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}
	return nil
}
