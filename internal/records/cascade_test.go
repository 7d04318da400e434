package records

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rootCascadeDB serves the derived-id lookup and the final returning
// delete; every intermediate delete goes through Exec.
func rootCascadeDB(derivedIDs []string, finalRow []any) *fakeDB {
	db := &fakeDB{}
	db.queryFn = func(sql string, args []any) (pgx.Rows, error) {
		if strings.HasPrefix(sql, "SELECT id FROM") {
			rows := make([][]any, len(derivedIDs))
			for i, id := range derivedIDs {
				rows[i] = []any{id}
			}
			return newFakeRows([]string{"id"}, rows...), nil
		}
		if finalRow == nil {
			return newFakeRows([]string{"id", "stok_kodu"}), nil
		}
		return newFakeRows([]string{"id", "stok_kodu"}, finalRow), nil
	}
	return db
}

func TestCascadeRootDeletesChildrenFirst(t *testing.T) {
	db := rootCascadeDB([]string{"d1", "d2"}, []any{"mm-1", "GT.NIT.0250.01"})
	d := mustLookup(t, registry.TableRootProduct)

	deleted, steps, err := runCascade(context.Background(), db, d, "mm-1", true, discardLogger())
	require.NoError(t, err)
	require.Equal(t, "mm-1", deleted["id"])

	// One recipe delete per derived row, then the bulk deletes in
	// child-before-parent order.
	require.Equal(t, []string{
		"DELETE FROM gal_cost_cal_ym_gt_recete WHERE ym_gt_id = $1",
		"DELETE FROM gal_cost_cal_ym_gt_recete WHERE ym_gt_id = $1",
		"DELETE FROM gal_cost_cal_ym_gt WHERE mm_gt_id = $1",
		"DELETE FROM gal_cost_cal_mm_gt_ym_st WHERE mm_gt_id = $1",
		"DELETE FROM gal_cost_cal_mm_gt_recete WHERE mm_gt_id = $1",
	}, db.execSQL)
	require.Len(t, steps, 5)
	for _, s := range steps {
		require.NoError(t, s.Err)
	}
}

func TestCascadeComponent(t *testing.T) {
	db := &fakeDB{queryFn: func(sql string, args []any) (pgx.Rows, error) {
		return newFakeRows([]string{"id"}, []any{"st-1"}), nil
	}}
	d := mustLookup(t, registry.TableComponent)

	_, _, err := runCascade(context.Background(), db, d, "st-1", true, discardLogger())
	require.NoError(t, err)
	require.Equal(t, []string{
		"DELETE FROM gal_cost_cal_mm_gt_ym_st WHERE ym_st_id = $1",
		"DELETE FROM gal_cost_cal_ym_st_recete WHERE ym_st_id = $1",
	}, db.execSQL)
}

func TestCascadeMissingTargetIsNotFound(t *testing.T) {
	db := rootCascadeDB(nil, nil)
	d := mustLookup(t, registry.TableRootProduct)

	_, _, err := runCascade(context.Background(), db, d, "gone", true, discardLogger())
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCascadeStrictAbortsOnStepError(t *testing.T) {
	db := rootCascadeDB(nil, []any{"mm-1", "x"})
	db.execFn = func(sql string, args []any) (pgconn.CommandTag, error) {
		if strings.Contains(sql, registry.TableRelationship) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "42P01"}
		}
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	d := mustLookup(t, registry.TableRootProduct)

	_, steps, err := runCascade(context.Background(), db, d, "mm-1", true, discardLogger())
	require.Error(t, err)
	// The failing step ends the cascade; the root recipe delete and the
	// final delete never run.
	require.Equal(t, registry.TableRelationship, steps[len(steps)-1].Table)
	require.NotContains(t, db.execSQL, "DELETE FROM gal_cost_cal_mm_gt_recete WHERE mm_gt_id = $1")
}

func TestCascadeTolerantContinuesPastStepError(t *testing.T) {
	db := rootCascadeDB(nil, []any{"mm-1", "x"})
	db.execFn = func(sql string, args []any) (pgconn.CommandTag, error) {
		if strings.Contains(sql, registry.TableRelationship) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "42P01"}
		}
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	d := mustLookup(t, registry.TableRootProduct)

	deleted, steps, err := runCascade(context.Background(), db, d, "mm-1", false, discardLogger())
	require.NoError(t, err)
	require.Equal(t, "mm-1", deleted["id"])
	require.Contains(t, db.execSQL, "DELETE FROM gal_cost_cal_mm_gt_recete WHERE mm_gt_id = $1")

	failed := 0
	for _, s := range steps {
		if s.Err != nil {
			failed++
		}
	}
	require.Equal(t, 1, failed)
}

func TestDependentTables(t *testing.T) {
	root := mustLookup(t, registry.TableRootProduct)
	require.ElementsMatch(t, []string{
		registry.TableRootProduct, registry.TableDerivedProduct, registry.TableDerivedRecipe,
		registry.TableRelationship, registry.TableRootRecipe,
	}, dependentTables(root))

	recipe := mustLookup(t, registry.TableRootRecipe)
	require.Equal(t, []string{registry.TableRootRecipe}, dependentTables(recipe))
}
