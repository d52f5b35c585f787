package reports

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the period report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{period}", h.Report)
	r.Get("/{period}/export.csv", h.Export)
}

// MountDashboard registers the dashboard summary endpoint.
func (h *Handler) MountDashboard(r chi.Router) {
	r.Get("/", h.ShowDashboard)
}
