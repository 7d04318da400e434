package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galvan-crm/galvan/internal/registry"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the Postgres-backed recipe lookups.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) RootRecipeCount(ctx context.Context, mmGtID string) (int64, error) {
	return r.count(ctx, registry.TableRootRecipe, "mm_gt_id", mmGtID)
}

func (r *repository) DerivedRecipeCount(ctx context.Context, ymGtID string) (int64, error) {
	return r.count(ctx, registry.TableDerivedRecipe, "ym_gt_id", ymGtID)
}

func (r *repository) ComponentRecipeCount(ctx context.Context, ymStID string) (int64, error) {
	return r.count(ctx, registry.TableComponentRecipe, "ym_st_id", ymStID)
}

func (r *repository) count(ctx context.Context, table, column, id string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", table, column)
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) StockCode(ctx context.Context, table, id string) (*string, error) {
	if _, ok := registry.Lookup(table); !ok {
		return nil, fmt.Errorf("recipes: table %q not allowlisted", table)
	}
	var code *string
	query := "SELECT stok_kodu FROM " + table + " WHERE id = $1"
	err := r.db.QueryRow(ctx, query, id).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return code, nil
}

func (r *repository) MainComponentID(ctx context.Context, mmGtID string) (*string, error) {
	var id string
	query := "SELECT ym_st_id FROM " + registry.TableRelationship +
		" WHERE mm_gt_id = $1 ORDER BY sira ASC LIMIT 1"
	err := r.db.QueryRow(ctx, query, mmGtID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}
