package requests

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
	"github.com/galvan-crm/galvan/internal/registry"
)

// Handler exposes the approval workflow endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes on the router. The static count route must
// win over the generic table wildcard, which chi guarantees.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/"+registry.TableRequests+"/count", h.count)
	r.Put("/"+registry.TableRequests+"/{id}/approve", h.approve)
	r.Put("/"+registry.TableRequests+"/{id}/reject", h.reject)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	var in ApproveInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON in request body")
		return
	}
	updated, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.logger.Error("approve request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	var in RejectInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON in request body")
		return
	}
	updated, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.logger.Error("reject request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	createdBy := r.URL.Query().Get("created_by")

	count, err := h.service.Count(r.Context(), status, createdBy)
	if err != nil {
		h.logger.Error("count requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"count": count})
}
