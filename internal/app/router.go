package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/karvyapaar/karvyapaar/internal/assist"
	"github.com/karvyapaar/karvyapaar/internal/auth"
	"github.com/karvyapaar/karvyapaar/internal/billing"
	"github.com/karvyapaar/karvyapaar/internal/catalog"
	"github.com/karvyapaar/karvyapaar/internal/compliance"
	"github.com/karvyapaar/karvyapaar/internal/customers"
	"github.com/karvyapaar/karvyapaar/internal/observability"
	"github.com/karvyapaar/karvyapaar/internal/reports"
	"github.com/karvyapaar/karvyapaar/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	BillingHandler    *billing.Handler
	CatalogHandler    *catalog.Handler
	ComplianceHandler *compliance.Handler
	CustomersHandler  *customers.Handler
	ReportsHandler    *reports.Handler
	AssistHandler     *assist.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with karVyapaar defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
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

	if params.AuthHandler != nil {
		params.AuthHandler.MountPublicRoutes(r)
	}

	r.Route("/api", func(api chi.Router) {
		if params.AuthService != nil {
			api.Use(params.AuthService.RequireToken)
		}
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(api)
		}
		if params.BillingHandler != nil {
			params.BillingHandler.MountRoutes(api)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(api)
		}
		if params.ComplianceHandler != nil {
			params.ComplianceHandler.MountRoutes(api)
		}
		if params.CustomersHandler != nil {
			params.CustomersHandler.MountRoutes(api)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(api)
		}
		if params.AssistHandler != nil {
			params.AssistHandler.MountRoutes(api)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				params.JobHandler.MountRoutes(jr)
			})
		}
	})

	return r
}
