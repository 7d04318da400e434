package records

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/galvan-crm/galvan/internal/normalize"
	"github.com/galvan-crm/galvan/internal/platform/db"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

// ImportReport summarizes a replace-all speed import. Errors carries one
// entry per rejected item; a wholly successful import omits it.
type ImportReport struct {
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Errors       []BatchItemError `json:"errors,omitempty"`
}

// tlcOptionalColumns may be absent from an import item; the drawing-line
// diameters and the line speed are mandatory.
var tlcOptionalColumns = []string{
	"total_red", "kafa_sayisi", "uretim_kg_saat",
	"elektrik_sarfiyat_kw_sa", "elektrik_sarfiyat_kw_ton",
}

// ReplaceTLCSpeeds replaces the whole drawing-speed table with the given
// items in one transaction: existing rows are cleared first, then each item
// is inserted with its line code derived server-side. Bad items are
// tolerated and reported; only clearing or transaction failures abort.
func (s *Service) ReplaceTLCSpeeds(ctx context.Context, items []any) (ImportReport, error) {
	if len(items) == 0 {
		return ImportReport{}, fmt.Errorf("%w: empty import", httpx.ErrValidation)
	}

	var report ImportReport
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var txErr error
		report, txErr = runTLCImport(ctx, tx, items, s.logger)
		return txErr
	})
	if err != nil {
		return ImportReport{}, err
	}
	s.cache.InvalidateTable(ctx, registry.TableTLCSpeeds)
	return report, nil
}

func runTLCImport(ctx context.Context, q DBTX, items []any, logger *slog.Logger) (ImportReport, error) {
	d, _ := registry.Lookup(registry.TableTLCSpeeds)

	if _, err := q.Exec(ctx, "DELETE FROM "+d.Name); err != nil {
		return ImportReport{}, fmt.Errorf("records: clear %s: %w", d.Name, err)
	}

	repo := NewRepository(q)
	var report ImportReport
	for _, item := range items {
		record, err := tlcRecord(item)
		if err == nil {
			_, err = repo.Insert(ctx, d, record)
		}
		if err != nil {
			report.ErrorCount++
			report.Errors = append(report.Errors, BatchItemError{Error: err.Error(), Item: item})
			logger.Warn("speed import item rejected", slog.Any("error", err))
			continue
		}
		report.SuccessCount++
	}
	return report, nil
}

// tlcRecord normalizes one import item and derives the line code from the
// inlet and outlet diameters ("2.5" and "1.8" become "2.5x1.8").
func tlcRecord(item any) (Record, error) {
	payload, ok := item.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: import item must be an object", httpx.ErrValidation)
	}
	in := normalize.Record(payload)

	inlet, outlet, speed := in["giris_capi"], in["cikis_capi"], in["calisma_hizi"]
	if !presentNumber(inlet) || !presentNumber(outlet) || !presentNumber(speed) {
		return nil, fmt.Errorf("%w: giris_capi, cikis_capi and calisma_hizi are required", httpx.ErrValidation)
	}

	record := Record{
		"id":           uuid.NewString(),
		"giris_capi":   inlet,
		"cikis_capi":   outlet,
		"calisma_hizi": speed,
		"kod":          numberText(inlet) + "x" + numberText(outlet),
	}
	for _, col := range tlcOptionalColumns {
		if v, ok := in[col]; ok && v != nil {
			record[col] = v
		}
	}
	return record, nil
}

func presentNumber(v any) bool {
	f, ok := v.(float64)
	return ok && f != 0
}

func numberText(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
