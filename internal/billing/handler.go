package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vsbilling/vsbilling/internal/platform/httpx"
	"github.com/vsbilling/vsbilling/internal/shared"
)

// BillService is the subset of *Service the HTTP layer depends on.
type BillService interface {
	NextBillNumber(ctx context.Context, owner string) (string, error)
	ListBills(ctx context.Context, owner string) []Bill
	GetBill(ctx context.Context, owner, id string) (*Bill, error)
	SaveBill(ctx context.Context, owner string, bill Bill) (*Bill, error)
	DeleteBill(ctx context.Context, owner, id string) error
}

// IdempotencyGuard claims client request keys so a retried create does not
// store a second bill.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, owner, scope, key string) error
	Delete(ctx context.Context, owner, scope, key string) error
}

const (
	idempotencyHeader = "Idempotency-Key"
	createScope       = "bills.create"
)

type Handler struct {
	logger      *slog.Logger
	service     BillService
	idempotency IdempotencyGuard
}

func NewHandler(logger *slog.Logger, service BillService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// WithIdempotency enables Idempotency-Key handling on bill creation.
func (h *Handler) WithIdempotency(guard IdempotencyGuard) *Handler {
	h.idempotency = guard
	return h
}

func (h *Handler) NextNumber(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	number, err := h.service.NextBillNumber(r.Context(), owner)
	if err != nil {
		h.logger.Error("issue bill number failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Bill Number Unavailable", "Failed to generate bill number")
		return
	}
	httpx.JSON(w, http.StatusOK, BillNumberResponse{BillNumber: number})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())

	billType := BillType(r.URL.Query().Get("type"))
	if billType == "all" {
		billType = ""
	}
	if billType != "" && !billType.Valid() {
		httpx.RespondError(w, shared.NewValidationError(map[string]string{"type": "must be one of all customer supplier"}))
		return
	}

	bills := FilterBills(h.service.ListBills(r.Context(), owner), billType, r.URL.Query().Get("q"))
	httpx.JSON(w, http.StatusOK, NewListBillsResponse(bills))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	bill, err := h.service.GetBill(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		h.respondFailure(w, "get bill failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	owner := shared.OwnerFromContext(r.Context())

	var req SaveBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if body := strings.TrimSpace(req.ID); id != "" && body != "" && body != id {
		httpx.RespondError(w, shared.NewValidationError(map[string]string{"id": "must match the bill id in the path"}))
		return
	}
	bill := req.ToBill(id)
	if err := ValidateBill(bill); err != nil {
		httpx.RespondError(w, err)
		return
	}

	key := r.Header.Get(idempotencyHeader)
	guarded := status == http.StatusCreated && key != "" && h.idempotency != nil
	if guarded {
		if err := h.idempotency.CheckAndInsert(r.Context(), owner, createScope, key); err != nil {
			h.respondFailure(w, "claim idempotency key failed", err)
			return
		}
	}

	saved, err := h.service.SaveBill(r.Context(), owner, bill)
	if err != nil {
		if guarded {
			// The request context may already be cancelled by the timeout middleware.
			if relErr := h.idempotency.Delete(context.WithoutCancel(r.Context()), owner, createScope, key); relErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", relErr))
			}
		}
		h.respondFailure(w, "save bill failed", err)
		return
	}
	if status == http.StatusCreated {
		w.Header().Set("Location", fmt.Sprintf("/api/bills/%s", saved.ID))
	}
	httpx.JSON(w, status, saved)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	if err := h.service.DeleteBill(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.respondFailure(w, "delete bill failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondFailure(w http.ResponseWriter, msg string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrConflict) {
		h.logger.Error(msg, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
