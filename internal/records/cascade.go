package records

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

// StepResult records one intermediate deletion inside a cascade.
type StepResult struct {
	Table    string
	Affected int64
	Err      error
}

// runCascade removes a product row and its dependents in child-before-parent
// order on the supplied transaction. In strict mode any step error aborts
// the whole transaction; otherwise the error is logged in the step result
// and the cascade continues, mirroring the store's best-effort cleanup.
// The final delete of the target returning zero rows always aborts.
func runCascade(ctx context.Context, q DBTX, d registry.Descriptor, id string, strict bool, logger *slog.Logger) (Record, []StepResult, error) {
	var steps []StepResult

	step := func(table, query string, args ...any) error {
		tag, err := q.Exec(ctx, query, args...)
		res := StepResult{Table: table, Affected: tag.RowsAffected(), Err: err}
		steps = append(steps, res)
		if err != nil {
			if strict {
				return fmt.Errorf("records: cascade step %s: %w", table, err)
			}
			logger.Warn("cascade step failed, continuing",
				slog.String("table", table), slog.String("id", id), slog.Any("error", err))
		}
		return nil
	}

	switch d.Kind {
	case registry.ProductRoot:
		derived, err := selectIDs(ctx, q, "SELECT id FROM "+registry.TableDerivedProduct+" WHERE mm_gt_id = $1", id)
		if err != nil {
			if strict {
				return nil, steps, fmt.Errorf("records: cascade list derived: %w", err)
			}
			logger.Warn("cascade derived lookup failed, continuing", slog.String("id", id), slog.Any("error", err))
		}
		for _, derivedID := range derived {
			if err := step(registry.TableDerivedRecipe,
				"DELETE FROM "+registry.TableDerivedRecipe+" WHERE ym_gt_id = $1", derivedID); err != nil {
				return nil, steps, err
			}
		}
		for _, s := range []struct{ table, column string }{
			{registry.TableDerivedProduct, "mm_gt_id"},
			{registry.TableRelationship, "mm_gt_id"},
			{registry.TableRootRecipe, "mm_gt_id"},
		} {
			if err := step(s.table, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", s.table, s.column), id); err != nil {
				return nil, steps, err
			}
		}

	case registry.Derived:
		if err := step(registry.TableDerivedRecipe,
			"DELETE FROM "+registry.TableDerivedRecipe+" WHERE ym_gt_id = $1", id); err != nil {
			return nil, steps, err
		}

	case registry.Component:
		if err := step(registry.TableRelationship,
			"DELETE FROM "+registry.TableRelationship+" WHERE ym_st_id = $1", id); err != nil {
			return nil, steps, err
		}
		if err := step(registry.TableComponentRecipe,
			"DELETE FROM "+registry.TableComponentRecipe+" WHERE ym_st_id = $1", id); err != nil {
			return nil, steps, err
		}
	}

	rows, err := q.Query(ctx, "DELETE FROM "+d.Name+" WHERE id = $1 RETURNING *", id)
	if err != nil {
		return nil, steps, fmt.Errorf("records: cascade delete %s: %w", d.Name, err)
	}
	deleted, err := Collect(rows)
	if err != nil {
		return nil, steps, err
	}
	if len(deleted) == 0 {
		return nil, steps, fmt.Errorf("records: cascade delete %s id=%s: %w", d.Name, id, httpx.ErrNotFound)
	}
	return deleted[0], steps, nil
}

func selectIDs(ctx context.Context, q DBTX, query string, args ...any) ([]string, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// dependentTables lists every table a cascade against d may have touched,
// for cache invalidation after the transaction commits.
func dependentTables(d registry.Descriptor) []string {
	switch d.Kind {
	case registry.ProductRoot:
		return []string{d.Name, registry.TableDerivedProduct, registry.TableDerivedRecipe,
			registry.TableRelationship, registry.TableRootRecipe}
	case registry.Derived:
		return []string{d.Name, registry.TableDerivedRecipe}
	case registry.Component:
		return []string{d.Name, registry.TableRelationship, registry.TableComponentRecipe}
	default:
		return []string{d.Name}
	}
}
