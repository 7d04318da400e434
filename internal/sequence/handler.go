package sequence

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
)

// Handler serves the next-stock-code endpoint.
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
	r.Get("/gal_cost_cal_sequence/next", h.next)
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	kod2 := r.URL.Query().Get("kod_2")
	cap := r.URL.Query().Get("cap")

	code, err := h.service.Next(r.Context(), kod2, cap)
	if err != nil {
		h.logger.Error("next sequence", slog.String("kod_2", kod2), slog.String("cap", cap), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, code)
}
