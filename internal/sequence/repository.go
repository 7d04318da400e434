package sequence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galvan-crm/galvan/internal/registry"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the Postgres-backed suffix lookup.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) MaxSuffix(ctx context.Context, kod2, prefix string) (*int, error) {
	query := `SELECT MAX(CAST(RIGHT(stok_kodu, 2) AS INTEGER)) FROM ` + registry.TableRootProduct +
		` WHERE kod_2 = $1 AND stok_kodu LIKE $2`
	var maxSeq *int
	if err := r.db.QueryRow(ctx, query, kod2, prefix).Scan(&maxSeq); err != nil {
		return nil, err
	}
	return maxSeq, nil
}
