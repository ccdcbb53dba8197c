package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sky-orcamentos/sky-orcamentos/internal/auth"
	"github.com/sky-orcamentos/sky-orcamentos/internal/categories"
	"github.com/sky-orcamentos/sky-orcamentos/internal/clients"
	"github.com/sky-orcamentos/sky-orcamentos/internal/dashboard"
	"github.com/sky-orcamentos/sky-orcamentos/internal/importer"
	"github.com/sky-orcamentos/sky-orcamentos/internal/observability"
	"github.com/sky-orcamentos/sky-orcamentos/internal/products"
	"github.com/sky-orcamentos/sky-orcamentos/internal/quotes"
	"github.com/sky-orcamentos/sky-orcamentos/internal/shared"
	"github.com/sky-orcamentos/sky-orcamentos/internal/trash"
	"github.com/sky-orcamentos/sky-orcamentos/internal/workspaces"
	"github.com/sky-orcamentos/sky-orcamentos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	WorkspaceHandler *workspaces.Handler
	ClientHandler    *clients.Handler
	CategoryHandler  *categories.Handler
	ProductHandler   *products.Handler
	QuoteHandler     *quotes.Handler
	TrashHandler     *trash.Handler
	DashboardHandler *dashboard.Handler
	ImportHandler    *importer.Handler
	JobHandler       *jobs.Handler
	ScopeMiddleware  workspaces.Middleware
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api", func(api chi.Router) {
		api.Route("/workspaces", func(ws chi.Router) {
			ws.Use(workspaces.RequireSession)
			params.WorkspaceHandler.MountRoutes(ws)
		})

		api.Route("/workspace/{workspaceID}", func(scoped chi.Router) {
			scoped.Use(params.ScopeMiddleware.RequireMember)

			params.WorkspaceHandler.MountScopedRoutes(scoped)
			scoped.Route("/clientes", params.ClientHandler.MountRoutes)
			scoped.Route("/categorias", params.CategoryHandler.MountRoutes)
			scoped.Route("/produtos", params.ProductHandler.MountRoutes)
			scoped.Route("/orcamentos", params.QuoteHandler.MountRoutes)
			scoped.Route("/lixeira", params.TrashHandler.MountRoutes)
			scoped.Route("/dashboard", params.DashboardHandler.MountRoutes)
			scoped.Route("/import", func(imp chi.Router) {
				imp.Use(params.ScopeMiddleware.RequireLevel(shared.LevelEditor))
				params.ImportHandler.MountRoutes(imp)
			})
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
