package records

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/galvan-crm/galvan/internal/dynquery"
	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

// filterKeys are the query parameters recognized by filtered selects.
var filterKeys = []string{
	"id", "mm_gt_id", "ym_gt_id", "ym_st_id", "kod_2", "cap",
	"stok_kodu", "stok_kodu_like", "ids", "status", "created_by",
}

// Handler exposes the generic CRUD surface over HTTP. It is one thin
// transport adapter over the records service; the table name is a path
// parameter resolved against the registry before anything else happens.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// purgeableTables are the scratch tables exposing a delete-all route.
var purgeableTables = []string{
	"panel_cost_cal_gecici_hesaplar",
	"panel_cost_cal_maliyet_listesi",
}

// MountRoutes registers the parametrized table routes. The static import
// and purge paths are registered alongside; chi gives them precedence over
// the table wildcards.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/bulk-import/tlc-hizlar", h.importTLCSpeeds)
	for _, table := range purgeableTables {
		r.Delete("/"+table+"/all", h.purgeAll(table))
	}

	r.Get("/{table}", h.list)
	r.Post("/{table}", h.create)
	r.Put("/{table}/{id}", h.update)
	r.Delete("/{table}/{id}", h.delete)
}

func (h *Handler) resolveTable(w http.ResponseWriter, r *http.Request) (registry.Descriptor, bool) {
	name := chi.URLParam(r, "table")
	d, ok := registry.Lookup(name)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unsupported table name")
		return registry.Descriptor{}, false
	}
	return d, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveTable(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	raw := make(map[string]string)
	for _, key := range filterKeys {
		if v := query.Get(key); v != "" {
			raw[key] = v
		}
	}

	f := dynquery.Filters{
		ID:           raw["id"],
		MMGTID:       raw["mm_gt_id"],
		YMGTID:       raw["ym_gt_id"],
		YMSTID:       raw["ym_st_id"],
		Kod2:         raw["kod_2"],
		Cap:          raw["cap"],
		StokKodu:     raw["stok_kodu"],
		StokKoduLike: raw["stok_kodu_like"],
		Status:       raw["status"],
		CreatedBy:    raw["created_by"],
	}
	if ids := raw["ids"]; ids != "" {
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.IDs = append(f.IDs, id)
			}
		}
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		f.Limit = limit
	}

	rows, hit, err := h.service.List(r.Context(), d, f, raw)
	if err != nil {
		h.logger.Error("list records", slog.String("table", d.Name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	httpx.List(w, http.StatusOK, rows)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveTable(w, r)
	if !ok {
		return
	}

	var payload any
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON in request body")
		return
	}

	switch body := payload.(type) {
	case []any:
		if len(body) == 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "empty batch")
			return
		}
		results, err := h.service.CreateBatch(r.Context(), d, body)
		if err != nil {
			h.respondWriteError(w, d, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, results)
	case map[string]any:
		if len(body) == 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "empty record")
			return
		}
		created, err := h.service.CreateOne(r.Context(), d, body)
		if err != nil {
			h.respondWriteError(w, d, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, created)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be an object or an array of objects")
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveTable(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var payload map[string]any
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON in request body")
		return
	}

	updated, err := h.service.Update(r.Context(), d, id, payload)
	if err != nil {
		h.respondWriteError(w, d, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.resolveTable(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	deleted, err := h.service.Delete(r.Context(), d, id)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("delete record", slog.String("table", d.Name), slog.String("id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, deleted)
}

func (h *Handler) importTLCSpeeds(w http.ResponseWriter, r *http.Request) {
	var items []any
	if err := httpx.DecodeJSON(r, &items); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be a JSON array")
		return
	}
	if len(items) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "empty import")
		return
	}

	report, err := h.service.ReplaceTLCSpeeds(r.Context(), items)
	if err != nil {
		h.logger.Error("import tlc speeds", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}

func (h *Handler) purgeAll(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := registry.Lookup(table)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unsupported table name")
			return
		}
		deleted, err := h.service.PurgeAll(r.Context(), d)
		if err != nil {
			h.logger.Error("purge table", slog.String("table", d.Name), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"message": "all records deleted",
			"deleted": deleted,
		})
	}
}

// respondWriteError adds friendlier messaging for recipe-table constraint
// violations before falling back to the standard mapping.
func (h *Handler) respondWriteError(w http.ResponseWriter, d registry.Descriptor, err error) {
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error("write record", slog.String("table", d.Name), slog.Any("error", err))
	}
	if d.IsRecipe() {
		switch {
		case errors.Is(err, httpx.ErrDuplicate):
			httpx.Problem(w, http.StatusConflict, "Duplicate Recipe", "this recipe already exists: "+httpx.PGDetail(err))
			return
		case errors.Is(err, httpx.ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "Invalid Recipe", "required recipe fields are missing or malformed")
			return
		}
	}
	httpx.RespondError(w, err)
}
