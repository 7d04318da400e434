package recipes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
)

// Handler serves the recipe completeness endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/check-recipes", h.check)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	mmGtID := r.URL.Query().Get("mm_gt_id")
	ymGtID := r.URL.Query().Get("ym_gt_id")

	report, err := h.service.Check(r.Context(), mmGtID, ymGtID)
	if err != nil {
		h.logger.Error("check recipes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
