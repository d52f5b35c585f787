package reports

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vsbilling/vsbilling/internal/platform/httpx"
	"github.com/vsbilling/vsbilling/internal/shared"
)

// ReportService is what the HTTP layer needs from *Service.
type ReportService interface {
	BuildReport(ctx context.Context, owner string, period Period) ReportData
	Dashboard(ctx context.Context, owner string) (DashboardStats, error)
}

type Handler struct {
	logger  *slog.Logger
	service ReportService
}

func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	owner := shared.OwnerFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, h.service.BuildReport(r.Context(), owner, period))
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	owner := shared.OwnerFromContext(r.Context())
	report := h.service.BuildReport(r.Context(), owner, period)

	var buf bytes.Buffer
	if err := ExportCSV(&buf, report); err != nil {
		h.logger.Error("export report csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("report-%s-%s.csv", period, report.End)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) ShowDashboard(w http.ResponseWriter, r *http.Request) {
	owner := shared.OwnerFromContext(r.Context())
	stats, err := h.service.Dashboard(r.Context(), owner)
	if err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
