package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/companyhub/internal/alerts"
	"github.com/odyssey-erp/companyhub/internal/auth"
	"github.com/odyssey-erp/companyhub/internal/dashboard"
	"github.com/odyssey-erp/companyhub/internal/inventory"
	"github.com/odyssey-erp/companyhub/internal/observability"
	"github.com/odyssey-erp/companyhub/internal/platform/httpx"
	"github.com/odyssey-erp/companyhub/internal/production"
	"github.com/odyssey-erp/companyhub/internal/sales"
	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/internal/view"
	"github.com/odyssey-erp/companyhub/jobs"
	"github.com/odyssey-erp/companyhub/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
	HealthChecks   map[string]httpx.Checker

	AuthHandler       *auth.Handler
	DashboardHandler  *dashboard.Handler
	InventoryHandler  *inventory.Handler
	SalesHandler      *sales.Handler
	ProductionHandler *production.Handler
	AlertsHandler     *alerts.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// Machine endpoints skip sessions and CSRF.
	r.Group(func(r chi.Router) {
		r.Use(chimw.RealIP, chimw.Recoverer)
		r.Method(http.MethodGet, "/healthz", httpx.Health(params.HealthChecks, 3*time.Second))
		if params.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
		staticFS, err := fs.Sub(web.Static, "static")
		if err != nil {
			params.Logger.Error("create static sub filesystem", slog.Any("error", err))
			return
		}
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	})

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		if params.Config == nil || !params.Config.IsProduction() {
			r.Use(chimw.Logger)
		}

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			if user, ok := shared.CurrentUser(r.Context()); ok {
				http.Redirect(w, r, shared.LandingPath(user.Role), http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		})
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthHandler.RequireAuth)
			if params.DashboardHandler != nil {
				r.Route("/dashboard", params.DashboardHandler.MountRoutes)
			}
			if params.InventoryHandler != nil {
				r.Route("/inventory", params.InventoryHandler.MountRoutes)
			}
			if params.SalesHandler != nil {
				r.Route("/sales", params.SalesHandler.MountRoutes)
			}
			if params.ProductionHandler != nil {
				r.Route("/production", params.ProductionHandler.MountRoutes)
			}
			if params.AlertsHandler != nil {
				r.Route("/alerts", params.AlertsHandler.MountRoutes)
			}
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			page := view.NewPage(r, params.CSRFManager, "Not found", map[string]string{
				"Message": "The page you are looking for does not exist.",
			})
			if err := params.Templates.RenderStatus(w, http.StatusNotFound, "pages/error.html", page); err != nil {
				params.Logger.Error("render not found", slog.Any("error", err))
			}
		})
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
