package contacts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vsbilling/vsbilling/internal/billing"
	"github.com/vsbilling/vsbilling/internal/platform/httpx"
	"github.com/vsbilling/vsbilling/internal/shared"
)

// ContactService is what the HTTP layer needs from *Service.
type ContactService interface {
	Customers(ctx context.Context, owner, search string) []Customer
	Suppliers(ctx context.Context, owner, search string) []Supplier
	CustomerHistory(ctx context.Context, owner, mobile string) []billing.Bill
	SupplierHistory(ctx context.Context, owner, mobile string) []billing.Bill
}

type Handler struct {
	logger  *slog.Logger
	service ContactService
}

func NewHandler(logger *slog.Logger, service ContactService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// CustomersResponse is the customer listing payload.
type CustomersResponse struct {
	Customers  []Customer      `json:"customers"`
	Total      int             `json:"total"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// SuppliersResponse is the supplier listing payload.
type SuppliersResponse struct {
	Suppliers      []Supplier      `json:"suppliers"`
	Total          int             `json:"total"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
}

// HistoryResponse lists one party's bills.
type HistoryResponse struct {
	Mobile string         `json:"mobile"`
	Bills  []billing.Bill `json:"bills"`
	Total  int            `json:"total"`
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	customers := h.service.Customers(r.Context(), owner, r.URL.Query().Get("q"))
	sum := decimal.Zero
	for _, c := range customers {
		sum = sum.Add(c.TotalPurchases)
	}
	httpx.JSON(w, http.StatusOK, CustomersResponse{Customers: customers, Total: len(customers), TotalSales: sum})
}

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	suppliers := h.service.Suppliers(r.Context(), owner, r.URL.Query().Get("q"))
	sum := decimal.Zero
	for _, s := range suppliers {
		sum = sum.Add(s.TotalPurchaseAmount)
	}
	httpx.JSON(w, http.StatusOK, SuppliersResponse{Suppliers: suppliers, Total: len(suppliers), TotalPurchases: sum})
}

func (h *Handler) CustomerBills(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	mobile := chi.URLParam(r, "mobile")
	bills := h.service.CustomerHistory(r.Context(), owner, mobile)
	httpx.JSON(w, http.StatusOK, HistoryResponse{Mobile: mobile, Bills: bills, Total: len(bills)})
}

func (h *Handler) SupplierBills(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	mobile := chi.URLParam(r, "mobile")
	bills := h.service.SupplierHistory(r.Context(), owner, mobile)
	httpx.JSON(w, http.StatusOK, HistoryResponse{Mobile: mobile, Bills: bills, Total: len(bills)})
}
