package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vsbilling/vsbilling/internal/auth"
	"github.com/vsbilling/vsbilling/internal/billing"
	"github.com/vsbilling/vsbilling/internal/contacts"
	"github.com/vsbilling/vsbilling/internal/observability"
	"github.com/vsbilling/vsbilling/internal/reports"
	"github.com/vsbilling/vsbilling/jobs"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(r *http.Request) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	BillingHandler  *billing.Handler
	ContactsHandler *contacts.Handler
	ReportsHandler  *reports.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
	Ready           HealthChecker
}

// NewRouter constructs the chi.Router with the billing API mounted.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Ready != nil {
			if err := params.Ready(r); err != nil {
				if params.Logger != nil {
					params.Logger.Warn("health check failed", slog.Any("error", err))
				}
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthService != nil {
			r.Use(auth.RequireUser(params.AuthService))
		}
		if params.BillingHandler != nil {
			r.Route("/bills", params.BillingHandler.MountRoutes)
		}
		if params.ContactsHandler != nil {
			r.Route("/customers", params.ContactsHandler.MountCustomerRoutes)
			r.Route("/suppliers", params.ContactsHandler.MountSupplierRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
			r.Route("/dashboard", params.ReportsHandler.MountDashboard)
		}
	})

	return r
}
