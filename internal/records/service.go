// Package records implements the generic multi-table CRUD surface: one
// parametrized service instead of one handler per table.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galvan-crm/galvan/internal/cache"
	"github.com/galvan-crm/galvan/internal/dynquery"
	"github.com/galvan-crm/galvan/internal/normalize"
	"github.com/galvan-crm/galvan/internal/platform/db"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

// BatchItemError is the per-item failure entry of a batch insert.
type BatchItemError struct {
	Error string `json:"error"`
	Item  any    `json:"item"`
}

// Service coordinates normalization, query building, the response cache
// and the cascade orchestrator.
type Service struct {
	pool          *pgxpool.Pool
	repo          *Repository
	cache         *cache.ResponseCache
	logger        *slog.Logger
	strictCascade bool
}

// NewService wires the generic records service. strictCascade selects
// whether a failed intermediate cascade step aborts the transaction.
func NewService(pool *pgxpool.Pool, repo *Repository, responseCache *cache.ResponseCache, logger *slog.Logger, strictCascade bool) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pool:          pool,
		repo:          repo,
		cache:         responseCache,
		logger:        logger,
		strictCascade: strictCascade,
	}
}

// List serves a filtered select through the response cache. rawFilters is
// the request's filter set as received, used for key derivation. The
// returned flag reports a cache hit.
func (s *Service) List(ctx context.Context, d registry.Descriptor, f dynquery.Filters, rawFilters map[string]string) ([]Record, bool, error) {
	key := cache.Key(d.Name, rawFilters, f.Page, f.Limit)
	rows, hit, err := s.cache.FetchList(ctx, key, func(ctx context.Context) ([]Record, error) {
		return s.repo.Select(ctx, d, f)
	})
	if err != nil {
		return nil, false, err
	}
	if rows == nil {
		rows = []Record{}
	}
	return rows, hit, nil
}

// CreateOne normalizes and inserts a single record, generating the id
// server-side when the payload does not carry one.
func (s *Service) CreateOne(ctx context.Context, d registry.Descriptor, payload map[string]any) (Record, error) {
	record := normalize.Record(payload)
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: empty record after normalization", httpx.ErrValidation)
	}
	if _, ok := record["id"]; !ok {
		record["id"] = uuid.NewString()
	}
	created, err := s.repo.Insert(ctx, d, record)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTable(ctx, d.Name)
	return created, nil
}

// CreateBatch inserts each item independently. A failing item becomes an
// {error, item} entry instead of aborting the batch; the batch fails only
// when no item could be inserted.
func (s *Service) CreateBatch(ctx context.Context, d registry.Descriptor, items []any) ([]any, error) {
	results := make([]any, 0, len(items))
	inserted := 0
	for _, item := range items {
		payload, ok := item.(map[string]any)
		if !ok || len(payload) == 0 {
			s.logger.Warn("skipping non-object batch item", slog.String("table", d.Name))
			continue
		}
		created, err := s.createOneNoInvalidate(ctx, d, payload)
		if err != nil {
			results = append(results, BatchItemError{Error: err.Error(), Item: item})
			continue
		}
		inserted++
		results = append(results, created)
	}
	if inserted == 0 {
		return nil, fmt.Errorf("%w: no valid items could be inserted", httpx.ErrValidation)
	}
	s.cache.InvalidateTable(ctx, d.Name)
	return results, nil
}

func (s *Service) createOneNoInvalidate(ctx context.Context, d registry.Descriptor, payload map[string]any) (Record, error) {
	record := normalize.Record(payload)
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: empty record after normalization", httpx.ErrValidation)
	}
	if _, ok := record["id"]; !ok {
		record["id"] = uuid.NewString()
	}
	return s.repo.Insert(ctx, d, record)
}

// Update normalizes the payload and updates the row identified by the
// path-supplied id. A missing target is a distinct not-found outcome.
func (s *Service) Update(ctx context.Context, d registry.Descriptor, id string, payload map[string]any) (Record, error) {
	record := normalize.Record(payload)
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", httpx.ErrValidation)
	}
	updated, err := s.repo.Update(ctx, d, id, record)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTable(ctx, d.Name)
	return updated, nil
}

// PurgeAll clears every row of a scratch table and drops its cached lists.
func (s *Service) PurgeAll(ctx context.Context, d registry.Descriptor) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx, d)
	if err != nil {
		return 0, err
	}
	s.cache.InvalidateTable(ctx, d.Name)
	return deleted, nil
}

// Delete removes a row. Product tables cascade over their dependents in a
// single transaction; everything else is a single-statement delete.
func (s *Service) Delete(ctx context.Context, d registry.Descriptor, id string) (Record, error) {
	if !d.IsProduct() {
		deleted, err := s.repo.Delete(ctx, d, id)
		if err != nil {
			return nil, err
		}
		s.cache.InvalidateTable(ctx, d.Name)
		return deleted, nil
	}

	var (
		deleted Record
		steps   []StepResult
	)
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var txErr error
		deleted, steps, txErr = runCascade(ctx, tx, d, id, s.strictCascade, s.logger)
		return txErr
	})
	for _, step := range steps {
		if step.Err == nil {
			s.logger.Debug("cascade step",
				slog.String("table", step.Table), slog.Int64("affected", step.Affected))
		}
	}
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("records: cascade delete failed: %w", err)
	}
	for _, table := range dependentTables(d) {
		s.cache.InvalidateTable(ctx, table)
	}
	return deleted, nil
}
