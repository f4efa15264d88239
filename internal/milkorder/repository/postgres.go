package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storeops-service/internal/milkorder"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const sessionColumns = `id, scope_id, user_id, session_date, status, created_at, updated_at,
    night_foh_saved_at, night_boh_saved_at, morning_saved_at, on_order_saved_at, completed_at`

const entrySelect = `
    SELECT e.session_id, e.item_id, c.code AS item_code, c.name AS item_name, c.par, c.sort_order,
           e.foh, e.boh, e.current_boh, e.delivered, e.delivery_method, e.on_order, e.updated_at
    FROM milk_order_entries e
    JOIN catalog_items c ON c.id = e.item_id`

// Field names come from this whitelist only; they are interpolated into SQL.
var fieldColumns = map[model.MilkField]string{
	model.MilkFieldFOH:        "foh",
	model.MilkFieldBOH:        "boh",
	model.MilkFieldCurrentBOH: "current_boh",
	model.MilkFieldDelivered:  "delivered",
	model.MilkFieldOnOrder:    "on_order",
}

func (r *PGRepository) CreateSession(ctx context.Context, s *model.MilkOrderSession, items []model.CatalogItem) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertSession := `
        INSERT INTO milk_order_sessions (
            id, scope_id, user_id, session_date, status, created_at, updated_at,
            night_foh_saved_at, night_boh_saved_at, morning_saved_at, on_order_saved_at, completed_at
        )
        VALUES (
            :id, :scope_id, :user_id, :session_date, :status, :created_at, :updated_at,
            :night_foh_saved_at, :night_boh_saved_at, :morning_saved_at, :on_order_saved_at, :completed_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, insertSession, s); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	insertEntry := tx.Rebind(`INSERT INTO milk_order_entries (session_id, item_id, updated_at) VALUES (?, ?, ?)`)
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, insertEntry, s.ID, item.ID, s.CreatedAt); err != nil {
			return fmt.Errorf("failed to seed entry %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) findOne(ctx context.Context, where string, args ...interface{}) (*model.MilkOrderSession, error) {
	var s model.MilkOrderSession
	query := r.DB.Rebind(`SELECT ` + sessionColumns + ` FROM milk_order_sessions WHERE ` + where + ` LIMIT 1`)
	err := r.DB.GetContext(ctx, &s, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.MilkOrderSession, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *PGRepository) FindByScopeDate(ctx context.Context, scopeID, date string) (*model.MilkOrderSession, error) {
	return r.findOne(ctx, "scope_id = ? AND session_date = ?", scopeID, date)
}

func (r *PGRepository) ListEntries(ctx context.Context, sessionID string) ([]model.MilkOrderEntry, error) {
	entries := []model.MilkOrderEntry{}
	query := r.DB.Rebind(entrySelect + ` WHERE e.session_id = ? ORDER BY c.sort_order ASC, c.name ASC`)
	if err := r.DB.SelectContext(ctx, &entries, query, sessionID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PGRepository) GetEntry(ctx context.Context, sessionID, itemID string) (*model.MilkOrderEntry, error) {
	var e model.MilkOrderEntry
	query := r.DB.Rebind(entrySelect + ` WHERE e.session_id = ? AND e.item_id = ?`)
	err := r.DB.GetContext(ctx, &e, query, sessionID, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *PGRepository) WriteFields(ctx context.Context, s *model.MilkOrderSession, writes []milkorder.FieldWrite, at time.Time) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, w := range writes {
		if err := writeField(ctx, tx, s.ID, w, at); err != nil {
			return err
		}
	}
	if err := updateSession(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

func writeField(ctx context.Context, tx *sqlx.Tx, sessionID string, w milkorder.FieldWrite, at time.Time) error {
	col, ok := fieldColumns[w.Field]
	if !ok {
		return fmt.Errorf("unknown milk field %q", w.Field)
	}

	var method interface{}
	switch w.Field {
	case model.MilkFieldCurrentBOH:
		method = string(model.DeliveryMethodBOHCount)
	case model.MilkFieldDelivered:
		method = string(model.DeliveryMethodDirect)
	}

	query := tx.Rebind(fmt.Sprintf(`
        INSERT INTO milk_order_entries (session_id, item_id, %[1]s, delivery_method, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (session_id, item_id)
        DO UPDATE SET
            %[1]s = EXCLUDED.%[1]s,
            delivery_method = COALESCE(EXCLUDED.delivery_method, milk_order_entries.delivery_method),
            updated_at = EXCLUDED.updated_at
    `, col))
	if _, err := tx.ExecContext(ctx, query, sessionID, w.ItemID, w.Value, method, at); err != nil {
		return fmt.Errorf("failed to write %s for item %s: %w", col, w.ItemID, err)
	}
	return nil
}

func updateSession(ctx context.Context, e sqlx.ExtContext, s *model.MilkOrderSession) error {
	query := `
        UPDATE milk_order_sessions
        SET status = :status,
            updated_at = :updated_at,
            night_foh_saved_at = :night_foh_saved_at,
            night_boh_saved_at = :night_boh_saved_at,
            morning_saved_at = :morning_saved_at,
            on_order_saved_at = :on_order_saved_at,
            completed_at = :completed_at
        WHERE id = :id
    `
	if _, err := sqlx.NamedExecContext(ctx, e, query, s); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func (r *PGRepository) UpdateSession(ctx context.Context, s *model.MilkOrderSession) error {
	return updateSession(ctx, r.DB, s)
}

func (r *PGRepository) ListCompleted(ctx context.Context, scopeID string, page, pageSize int) ([]model.MilkOrderSession, int, error) {
	var count int
	countQuery := r.DB.Rebind(`SELECT count(*) FROM milk_order_sessions WHERE scope_id = ? AND status = ?`)
	if err := r.DB.GetContext(ctx, &count, countQuery, scopeID, string(model.MilkPhaseCompleted)); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + sessionColumns + ` FROM milk_order_sessions
        WHERE scope_id = ? AND status = ?
        ORDER BY session_date DESC`
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	}

	sessions := []model.MilkOrderSession{}
	if err := r.DB.SelectContext(ctx, &sessions, r.DB.Rebind(query), scopeID, string(model.MilkPhaseCompleted)); err != nil {
		return nil, 0, err
	}
	return sessions, count, nil
}

func (r *PGRepository) ItemExists(ctx context.Context, itemID string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM catalog_items WHERE id = ? AND kind = ?`)
	if err := r.DB.GetContext(ctx, &count, query, itemID, string(model.ItemKindMilk)); err != nil {
		return false, err
	}
	return count > 0, nil
}
