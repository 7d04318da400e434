package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/galvan-crm/galvan/internal/recipes"
	"github.com/galvan-crm/galvan/internal/records"
	"github.com/galvan-crm/galvan/internal/requests"
	"github.com/galvan-crm/galvan/internal/sequence"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	RecordsHandler  *records.Handler
	SequenceHandler *sequence.Handler
	RequestsHandler *requests.Handler
	RecipesHandler  *recipes.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Fixed paths are registered before the table wildcard; chi gives
		// static segments precedence, so these never shadow table routes.
		if params.RecipesHandler != nil {
			params.RecipesHandler.MountRoutes(r)
		}
		if params.SequenceHandler != nil {
			params.SequenceHandler.MountRoutes(r)
		}
		if params.RequestsHandler != nil {
			params.RequestsHandler.MountRoutes(r)
		}
		params.RecordsHandler.MountRoutes(r)
	})

	return r
}
