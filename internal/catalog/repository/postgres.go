package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storeops-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storeops-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const itemColumns = `id, kind, code, name, is_active, sort_order, par, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, item *model.CatalogItem) error {
	query := `
        INSERT INTO catalog_items (id, kind, code, name, is_active, sort_order, par, created_at, updated_at)
        VALUES (:id, :kind, :code, :name, :is_active, :sort_order, :par, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) Update(ctx context.Context, item *model.CatalogItem) error {
	query := `
        UPDATE catalog_items
        SET name = :name,
            is_active = :is_active,
            sort_order = :sort_order,
            par = :par,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) Upsert(ctx context.Context, item *model.CatalogItem) error {
	query := `
        INSERT INTO catalog_items (id, kind, code, name, is_active, sort_order, par, created_at, updated_at)
        VALUES (:id, :kind, :code, :name, :is_active, :sort_order, :par, :created_at, :updated_at)
        ON CONFLICT (id)
        DO UPDATE SET
            code = EXCLUDED.code,
            name = EXCLUDED.name,
            is_active = EXCLUDED.is_active,
            sort_order = EXCLUDED.sort_order,
            par = EXCLUDED.par,
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.DB.NamedExecContext(ctx, query, item)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	query := r.DB.Rebind(`SELECT ` + itemColumns + ` FROM catalog_items WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CatalogFilters) ([]model.CatalogItem, int, error) {
	var items []model.CatalogItem
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Kind != "" {
		conditions = append(conditions, "kind = :kind")
		args["kind"] = string(f.Kind)
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if q := strings.TrimSpace(f.SearchQuery); q != "" {
		conditions = append(conditions, "(LOWER(name) LIKE :search OR LOWER(code) LIKE :search)")
		args["search"] = "%" + strings.ToLower(q) + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM catalog_items" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	query := "SELECT " + itemColumns + " FROM catalog_items" + whereClause + " ORDER BY kind ASC, sort_order ASC, name ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) ListActive(ctx context.Context, kind model.ItemKind) ([]model.CatalogItem, error) {
	items := []model.CatalogItem{}
	query := r.DB.Rebind(`SELECT ` + itemColumns + ` FROM catalog_items
        WHERE kind = ? AND is_active = ?
        ORDER BY sort_order ASC, name ASC`)
	if err := r.DB.SelectContext(ctx, &items, query, string(kind), true); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) IsCodeUnique(ctx context.Context, code, excludeID string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM catalog_items WHERE code = ? AND id <> ?`)
	if err := r.DB.GetContext(ctx, &count, query, code, excludeID); err != nil {
		return false, err
	}
	return count == 0, nil
}
