package requests

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galvan-crm/galvan/internal/dynquery"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/records"
	"github.com/galvan-crm/galvan/internal/registry"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the Postgres-backed workflow repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// The status guard makes the transition one-way: an already processed
// request behaves like a missing one.
const approveQuery = `UPDATE ` + registry.TableRequests + `
SET status = 'approved', processed_by = $1, processed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE id = $2 AND status = 'pending'
RETURNING *`

const rejectQuery = `UPDATE ` + registry.TableRequests + `
SET status = 'rejected', processed_by = $1, rejection_reason = $2, processed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE id = $3 AND status = 'pending'
RETURNING *`

func (r *repository) Approve(ctx context.Context, id, processedBy string) (map[string]any, error) {
	return r.transition(ctx, id, approveQuery, processedBy, id)
}

func (r *repository) Reject(ctx context.Context, id, processedBy, reason string) (map[string]any, error) {
	return r.transition(ctx, id, rejectQuery, processedBy, reason, id)
}

func (r *repository) transition(ctx context.Context, id, query string, args ...any) (map[string]any, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("requests: transition: %w", err)
	}
	updated, err := records.Collect(rows)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("requests: id=%s not pending: %w", id, httpx.ErrNotFound)
	}
	return updated[0], nil
}

func (r *repository) Count(ctx context.Context, status, createdBy string) (int64, error) {
	d, _ := registry.Lookup(registry.TableRequests)
	query, args := dynquery.Count(d, dynquery.Filters{Status: status, CreatedBy: createdBy})
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("requests: count: %w", err)
	}
	return count, nil
}
