// Package dynquery builds parametrized SQL statements from a validated
// table descriptor plus request-supplied filters and payloads. Table names
// come from the registry allowlist and column names are checked against the
// per-table whitelist, so no identifier in the output originates from an
// unvalidated request value.
package dynquery

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/galvan-crm/galvan/internal/normalize"
	"github.com/galvan-crm/galvan/internal/registry"
)

var (
	// ErrEmptyRecord rejects inserts and updates with no usable columns.
	ErrEmptyRecord = errors.New("dynquery: empty record")
	// ErrUnknownColumn rejects payload keys outside the table whitelist.
	ErrUnknownColumn = errors.New("dynquery: unknown column")
)

// Filters is the recognized filter set for a filtered select. Zero values
// mean "not supplied". Status and CreatedBy only apply to tables with
// status filtering enabled.
type Filters struct {
	ID           string
	MMGTID       string
	YMGTID       string
	YMSTID       string
	Kod2         string
	Cap          string
	StokKodu     string
	StokKoduLike string
	IDs          []string
	Status       string
	CreatedBy    string

	Page  int
	Limit int
}

type clauseBuilder struct {
	conds []string
	args  []any
}

func (b *clauseBuilder) add(expr string, value any) {
	b.args = append(b.args, value)
	b.conds = append(b.conds, fmt.Sprintf(expr, len(b.args)))
}

// Select builds a filtered SELECT over the descriptor's table. Conditions
// are AND-ed; the approval-workflow table is ordered newest first.
func Select(d registry.Descriptor, f Filters) (string, []any) {
	var b clauseBuilder

	if f.ID != "" {
		b.add("id = $%d", f.ID)
	}
	if f.MMGTID != "" {
		b.add("mm_gt_id = $%d", f.MMGTID)
	}
	if f.YMGTID != "" {
		b.add("ym_gt_id = $%d", f.YMGTID)
	}
	if f.YMSTID != "" {
		b.add("ym_st_id = $%d", f.YMSTID)
	}
	if f.Kod2 != "" && f.Cap != "" {
		b.add("kod_2 = $%d", f.Kod2)
		b.add("cap = $%d", normalize.Number(f.Cap))
	}
	if f.StokKodu != "" {
		b.add("stok_kodu = $%d", f.StokKodu)
	}
	if f.StokKoduLike != "" {
		b.add("stok_kodu LIKE $%d", f.StokKoduLike+"%")
	}
	if len(f.IDs) > 0 {
		placeholders := make([]string, 0, len(f.IDs))
		for _, id := range f.IDs {
			b.args = append(b.args, id)
			placeholders = append(placeholders, "$"+strconv.Itoa(len(b.args)))
		}
		b.conds = append(b.conds, "id IN ("+strings.Join(placeholders, ", ")+")")
	}
	if d.StatusFilter {
		if f.Status != "" {
			b.add("status = $%d", f.Status)
		}
		if f.CreatedBy != "" {
			b.add("created_by = $%d", f.CreatedBy)
		}
	}

	query := "SELECT * FROM " + d.Name
	if len(b.conds) > 0 {
		query += " WHERE " + strings.Join(b.conds, " AND ")
	}
	if d.StatusFilter {
		query += " ORDER BY created_at DESC"
	}
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		b.args = append(b.args, f.Limit)
		query += " LIMIT $" + strconv.Itoa(len(b.args))
		b.args = append(b.args, (page-1)*f.Limit)
		query += " OFFSET $" + strconv.Itoa(len(b.args))
	}
	return query, b.args
}

// Count builds a COUNT(*) statement with the same filter semantics as
// Select, without ordering or pagination.
func Count(d registry.Descriptor, f Filters) (string, []any) {
	f.Page = 0
	f.Limit = 0
	query, args := Select(d, f)
	query = strings.Replace(query, "SELECT * FROM", "SELECT COUNT(*) FROM", 1)
	query = strings.TrimSuffix(query, " ORDER BY created_at DESC")
	return query, args
}

// Insert builds a parametrized INSERT listing exactly the record's keys,
// in sorted order for deterministic statements. Every key must pass the
// table's column whitelist.
func Insert(d registry.Descriptor, record map[string]any) (string, []any, error) {
	if len(record) == 0 {
		return "", nil, ErrEmptyRecord
	}
	columns, err := sortedColumns(d, record)
	if err != nil {
		return "", nil, err
	}

	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = record[col]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		d.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

// Update builds a parametrized UPDATE setting every payload key plus the
// server-side updated timestamp, filtered by id.
func Update(d registry.Descriptor, id string, record map[string]any) (string, []any, error) {
	if len(record) == 0 {
		return "", nil, ErrEmptyRecord
	}
	columns, err := sortedColumns(d, record)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		args = append(args, record[col])
		sets[i] = fmt.Sprintf("%s = $%d", col, len(args))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = $%d RETURNING *",
		d.Name, strings.Join(sets, ", "), len(args))
	return query, args, nil
}

// Delete builds a simple non-cascading delete returning the removed row.
func Delete(d registry.Descriptor, id string) (string, []any) {
	return "DELETE FROM " + d.Name + " WHERE id = $1 RETURNING *", []any{id}
}

func sortedColumns(d registry.Descriptor, record map[string]any) ([]string, error) {
	columns := make([]string, 0, len(record))
	for col := range record {
		if !d.AllowsColumn(col) {
			return nil, fmt.Errorf("%w: %q not allowed for table %s", ErrUnknownColumn, col, d.Name)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, nil
}
