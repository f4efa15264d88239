package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/fekuna/omnipos-storeops-service/internal/rtde"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const sessionColumns = `id, scope_id, user_id, status, created_at, updated_at,
    counting_saved_at, pulling_saved_at, expires_at, completed_at`

const entrySelect = `
    SELECT e.session_id, e.item_id, c.code AS item_code, c.name AS item_name, c.par, c.sort_order,
           e.counted, e.pulled, e.updated_at
    FROM rtde_entries e
    JOIN catalog_items c ON c.id = e.item_id`

func (r *PGRepository) ReplaceSession(ctx context.Context, s *model.RTDESession, items []model.CatalogItem) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM rtde_sessions WHERE user_id = ?`), s.UserID); err != nil {
		return fmt.Errorf("failed to discard previous session: %w", err)
	}

	insertSession := `
        INSERT INTO rtde_sessions (
            id, scope_id, user_id, status, created_at, updated_at,
            counting_saved_at, pulling_saved_at, expires_at, completed_at
        )
        VALUES (
            :id, :scope_id, :user_id, :status, :created_at, :updated_at,
            :counting_saved_at, :pulling_saved_at, :expires_at, :completed_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, insertSession, s); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	insertEntry := tx.Rebind(`INSERT INTO rtde_entries (session_id, item_id, pulled, updated_at) VALUES (?, ?, ?, ?)`)
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, insertEntry, s.ID, item.ID, false, s.CreatedAt); err != nil {
			return fmt.Errorf("failed to seed entry %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) findOne(ctx context.Context, where string, arg string) (*model.RTDESession, error) {
	var s model.RTDESession
	query := r.DB.Rebind(`SELECT ` + sessionColumns + ` FROM rtde_sessions WHERE ` + where + ` LIMIT 1`)
	if err := r.DB.GetContext(ctx, &s, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.RTDESession, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *PGRepository) FindByUser(ctx context.Context, userID string) (*model.RTDESession, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *PGRepository) ListEntries(ctx context.Context, sessionID string) ([]model.RTDEEntry, error) {
	entries := []model.RTDEEntry{}
	query := r.DB.Rebind(entrySelect + ` WHERE e.session_id = ? ORDER BY c.sort_order ASC, c.name ASC`)
	if err := r.DB.SelectContext(ctx, &entries, query, sessionID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PGRepository) GetEntry(ctx context.Context, sessionID, itemID string) (*model.RTDEEntry, error) {
	var e model.RTDEEntry
	query := r.DB.Rebind(entrySelect + ` WHERE e.session_id = ? AND e.item_id = ?`)
	if err := r.DB.GetContext(ctx, &e, query, sessionID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *PGRepository) WriteCounts(ctx context.Context, s *model.RTDESession, writes []rtde.CountWrite, at time.Time) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := tx.Rebind(`
        INSERT INTO rtde_entries (session_id, item_id, counted, pulled, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (session_id, item_id)
        DO UPDATE SET
            counted = EXCLUDED.counted,
            updated_at = EXCLUDED.updated_at
    `)
	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, upsert, s.ID, w.ItemID, w.Value, false, at); err != nil {
			return fmt.Errorf("failed to write count for item %s: %w", w.ItemID, err)
		}
	}
	if err := updateSession(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) AssignDefaults(ctx context.Context, s *model.RTDESession, at time.Time) (int64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE rtde_entries SET counted = 0, updated_at = ? WHERE session_id = ? AND counted IS NULL`),
		at, s.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to assign default counts: %w", err)
	}
	assigned, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := updateSession(ctx, tx, s); err != nil {
		return 0, err
	}
	return assigned, tx.Commit()
}

func (r *PGRepository) SetPulled(ctx context.Context, sessionID, itemID string, pulled bool, at time.Time) error {
	query := r.DB.Rebind(`UPDATE rtde_entries SET pulled = ?, updated_at = ? WHERE session_id = ? AND item_id = ?`)
	if _, err := r.DB.ExecContext(ctx, query, pulled, at, sessionID, itemID); err != nil {
		return fmt.Errorf("failed to mark item %s: %w", itemID, err)
	}
	return nil
}

func updateSession(ctx context.Context, e sqlx.ExtContext, s *model.RTDESession) error {
	query := `
        UPDATE rtde_sessions
        SET status = :status,
            updated_at = :updated_at,
            counting_saved_at = :counting_saved_at,
            pulling_saved_at = :pulling_saved_at,
            expires_at = :expires_at,
            completed_at = :completed_at
        WHERE id = :id
    `
	if _, err := sqlx.NamedExecContext(ctx, e, query, s); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (r *PGRepository) UpdateSession(ctx context.Context, s *model.RTDESession) error {
	return updateSession(ctx, r.DB, s)
}

func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM rtde_sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *PGRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM rtde_sessions WHERE expires_at < ?`), now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *PGRepository) ItemExists(ctx context.Context, itemID string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM catalog_items WHERE id = ? AND kind = ?`)
	if err := r.DB.GetContext(ctx, &count, query, itemID, string(model.ItemKindRTDE)); err != nil {
		return false, err
	}
	return count > 0, nil
}
