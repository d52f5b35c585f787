package contacts

import (
	"github.com/go-chi/chi/v5"
)

// MountCustomerRoutes registers the customer views.
func (h *Handler) MountCustomerRoutes(r chi.Router) {
	r.Get("/", h.ListCustomers)
	r.Get("/{mobile}/bills", h.CustomerBills)
}

// MountSupplierRoutes registers the supplier views.
func (h *Handler) MountSupplierRoutes(r chi.Router) {
	r.Get("/", h.ListSuppliers)
	r.Get("/{mobile}/bills", h.SupplierBills)
}
