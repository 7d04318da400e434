package records

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/galvan-crm/galvan/internal/cache"
	"github.com/galvan-crm/galvan/internal/dynquery"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

func newTestService(t *testing.T, db *fakeDB) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	responseCache := cache.New(client, time.Minute, discardLogger())
	return NewService(nil, NewRepository(db), responseCache, discardLogger(), true)
}

func TestListCachesSecondRead(t *testing.T) {
	db := &fakeDB{queryFn: func(sql string, args []any) (pgx.Rows, error) {
		return newFakeRows([]string{"id", "cap"}, []any{"a", 2.5}), nil
	}}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootProduct)
	ctx := context.Background()
	raw := map[string]string{"kod_2": "NIT", "cap": "2,5"}
	f := dynquery.Filters{Kod2: "NIT", Cap: "2,5"}

	rows, hit, err := svc.List(ctx, d, f, raw)
	require.NoError(t, err)
	require.False(t, hit)
	require.Len(t, rows, 1)

	rows, hit, err = svc.List(ctx, d, f, raw)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, rows, 1)
	require.Len(t, db.querySQL, 1, "second read must come from the cache")
}

func TestListEmptyIsArray(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootProduct)

	rows, _, err := svc.List(context.Background(), d, dynquery.Filters{}, nil)
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestCreateOneGeneratesID(t *testing.T) {
	var insertArgs []any
	db := &fakeDB{queryFn: func(sql string, args []any) (pgx.Rows, error) {
		insertArgs = args
		return newFakeRows([]string{"id"}, []any{"whatever"}), nil
	}}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootProduct)

	_, err := svc.CreateOne(context.Background(), d, map[string]any{"cap": "2,5", "kod_2": "NIT"})
	require.NoError(t, err)
	// Sorted columns: cap, id, kod_2. The diameter arrives normalized and
	// the id is generated server-side.
	require.Len(t, insertArgs, 3)
	require.Equal(t, 2.5, insertArgs[0])
	require.NotEmpty(t, insertArgs[1])
	require.Equal(t, "NIT", insertArgs[2])
}

func TestCreateOneInvalidatesCachedLists(t *testing.T) {
	db := &fakeDB{queryFn: func(sql string, args []any) (pgx.Rows, error) {
		return newFakeRows([]string{"id"}, []any{"a"}), nil
	}}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootProduct)
	ctx := context.Background()

	_, _, err := svc.List(ctx, d, dynquery.Filters{}, nil)
	require.NoError(t, err)

	_, err = svc.CreateOne(ctx, d, map[string]any{"kod_2": "NIT"})
	require.NoError(t, err)

	_, hit, err := svc.List(ctx, d, dynquery.Filters{}, nil)
	require.NoError(t, err)
	require.False(t, hit, "write must drop the table's cached lists")
}

func TestCreateBatchPartialFailure(t *testing.T) {
	db := &fakeDB{queryFn: func(sql string, args []any) (pgx.Rows, error) {
		for _, a := range args {
			if a == "DUP" {
				return nil, &pgconn.PgError{Code: "23505", Detail: "Key (stok_kodu) already exists."}
			}
		}
		return newFakeRows([]string{"stok_kodu"}, []any{args[len(args)-1]}), nil
	}}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootProduct)

	results, err := svc.CreateBatch(context.Background(), d, []any{
		map[string]any{"stok_kodu": "A"},
		map[string]any{"stok_kodu": "DUP"},
		map[string]any{"stok_kodu": "B"},
	})
	require.NoError(t, err, "one bad item must not sink the batch")
	require.Len(t, results, 3)

	if _, ok := results[0].(Record); !ok {
		t.Fatalf("first result should be the created row, got %#v", results[0])
	}
	failure, ok := results[1].(BatchItemError)
	require.True(t, ok, "failed item should carry its error, got %#v", results[1])
	require.NotEmpty(t, failure.Error)
	require.Equal(t, map[string]any{"stok_kodu": "DUP"}, failure.Item)
}

func TestCreateBatchAllFailing(t *testing.T) {
	db := &fakeDB{queryFn: func(sql string, args []any) (pgx.Rows, error) {
		return nil, &pgconn.PgError{Code: "23502"}
	}}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootProduct)

	_, err := svc.CreateBatch(context.Background(), d, []any{
		map[string]any{"stok_kodu": "A"},
		map[string]any{"stok_kodu": "B"},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRejectsEmptyPayload(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootProduct)

	_, err := svc.Update(context.Background(), d, "x", map[string]any{})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, db.querySQL)
}

func TestDeleteNonProductIsSingleStatement(t *testing.T) {
	db := &fakeDB{queryFn: func(sql string, args []any) (pgx.Rows, error) {
		return newFakeRows([]string{"id"}, []any{"r-1"}), nil
	}}
	svc := newTestService(t, db)
	d := mustLookup(t, registry.TableRootRecipe)

	deleted, err := svc.Delete(context.Background(), d, "r-1")
	require.NoError(t, err)
	require.Equal(t, "r-1", deleted["id"])
	require.Len(t, db.querySQL, 1)
	require.Empty(t, db.execSQL)
}
