package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/banking/accounts"
	"github.com/odyssey-erp/backoffice/internal/banking/branches"
	"github.com/odyssey-erp/backoffice/internal/banking/customers"
	"github.com/odyssey-erp/backoffice/internal/banking/transactions"
	"github.com/odyssey-erp/backoffice/internal/dashboard"
	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/live"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
	"github.com/odyssey-erp/backoffice/jobs"
	"github.com/odyssey-erp/backoffice/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Pages          *view.Responder
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Refresh        *listview.RefreshSignal

	AuthHandler         *auth.Handler
	DashboardHandler    *dashboard.Handler
	CustomersHandler    *customers.Handler
	AccountsHandler     *accounts.Handler
	TransactionsHandler *transactions.Handler
	BranchesHandler     *branches.Handler
	LiveHandler         *live.Handler
	JobHandler          *jobs.Handler

	Dashboard Invalidator
	Warmups   WarmupEnqueuer
	Metrics   *observability.Metrics
}

type routeMounter interface {
	MountRoutes(r chi.Router)
}

// NewRouter constructs the chi.Router with the back office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
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
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	sh := &shell{
		logger:    params.Logger,
		pages:     params.Pages,
		refresh:   params.Refresh,
		dashboard: params.Dashboard,
		warmups:   params.Warmups,
	}

	pages := func(r chi.Router) {
		r.Use(RequestTimeout(params.Config), chimw.Compress(5))
	}

	if params.AuthHandler != nil {
		r.Group(func(r chi.Router) {
			pages(r)
			r.Route("/auth", params.AuthHandler.MountRoutes)
		})
	}

	r.Group(func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Use(params.AuthHandler.RequireOperator)
		}

		// Websockets stay open far longer than the page timeout.
		if params.LiveHandler != nil {
			params.LiveHandler.MountRoutes(r)
		}

		r.Group(func(r chi.Router) {
			pages(r)
			for _, h := range []routeMounter{
				params.DashboardHandler,
				params.CustomersHandler,
				params.AccountsHandler,
				params.TransactionsHandler,
				params.BranchesHandler,
			} {
				if !isNil(h) {
					h.MountRoutes(r)
				}
			}
			r.Post("/database", sh.selectDatabase)
			r.With(MutationLimiter(params.Config)).Post("/refresh", sh.refreshAll)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}

// isNil catches typed nil handlers stored in the interface slice.
func isNil(h routeMounter) bool {
	switch v := h.(type) {
	case nil:
		return true
	case *dashboard.Handler:
		return v == nil
	case *customers.Handler:
		return v == nil
	case *accounts.Handler:
		return v == nil
	case *transactions.Handler:
		return v == nil
	case *branches.Handler:
		return v == nil
	}
	return false
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for one hour in the browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
