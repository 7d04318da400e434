package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/galvan-crm/galvan/internal/dynquery"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

// Record is one table row as an ordered column-to-value mapping.
type Record = map[string]any

// DBTX is the statement surface shared by the pool and an open
// transaction. All single-statement operations run on any pooled
// connection; the cascade orchestrator passes an open pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository executes dynamically built statements and scans rows into
// generic records.
type Repository struct {
	db DBTX
}

// NewRepository wires a repository over a pool or transaction.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// Select runs a filtered select. No rows is an empty slice, not an error.
func (r *Repository) Select(ctx context.Context, d registry.Descriptor, f dynquery.Filters) ([]Record, error) {
	query, args := dynquery.Select(d, f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("records: select %s: %w", d.Name, err)
	}
	return Collect(rows)
}

// Count runs a COUNT(*) with the same filter semantics as Select.
func (r *Repository) Count(ctx context.Context, d registry.Descriptor, f dynquery.Filters) (int64, error) {
	query, args := dynquery.Count(d, f)
	var count int64
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("records: count %s: %w", d.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}

// Insert inserts one record and returns the created row. Constraint
// violations are classified into the domain taxonomy.
func (r *Repository) Insert(ctx context.Context, d registry.Descriptor, record Record) (Record, error) {
	query, args, err := dynquery.Insert(d, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	inserted, err := Collect(rows)
	if err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	if len(inserted) == 0 {
		return nil, fmt.Errorf("records: insert %s returned no row", d.Name)
	}
	return inserted[0], nil
}

// Update sets every payload column plus the updated timestamp. Zero
// affected rows means the target does not exist.
func (r *Repository) Update(ctx context.Context, d registry.Descriptor, id string, record Record) (Record, error) {
	query, args, err := dynquery.Update(d, id, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	updated, err := Collect(rows)
	if err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("records: update %s id=%s: %w", d.Name, id, httpx.ErrNotFound)
	}
	return updated[0], nil
}

// Delete removes a single row without cascading.
func (r *Repository) Delete(ctx context.Context, d registry.Descriptor, id string) (Record, error) {
	query, args := dynquery.Delete(d, id)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("records: delete %s: %w", d.Name, err)
	}
	deleted, err := Collect(rows)
	if err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, fmt.Errorf("records: delete %s id=%s: %w", d.Name, id, httpx.ErrNotFound)
	}
	return deleted[0], nil
}

// DeleteAll clears every row of the table. Only the scratch tables expose
// this through the transport layer.
func (r *Repository) DeleteAll(ctx context.Context, d registry.Descriptor) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM "+d.Name)
	if err != nil {
		return 0, fmt.Errorf("records: delete all %s: %w", d.Name, err)
	}
	return tag.RowsAffected(), nil
}

// Collect drains rows into generic records keyed by column name.
func Collect(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(Record, len(fields))
		for i, fd := range fields {
			// pgx hands uuid columns back as raw bytes.
			if b, ok := values[i].([16]byte); ok {
				record[fd.Name] = uuid.UUID(b).String()
				continue
			}
			record[fd.Name] = values[i]
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
