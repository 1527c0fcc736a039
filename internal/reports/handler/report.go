package handler

import (
	"net/http"
	"time"

	"github.com/vaxstock/vaxstock-backend/internal/reports/service"
	"github.com/vaxstock/vaxstock-backend/pkg/httputil"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

// ReportHandler exposes the derived reports over HTTP
type ReportHandler struct {
	service *service.ReportService
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		logger:  log,
	}
}

// Fiscal returns the monthly cost table
func (h *ReportHandler) Fiscal(w http.ResponseWriter, r *http.Request) {
	month, year, err := httputil.MonthYearQuery(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.service.Fiscal(r.Context(), month, year)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// Dashboard returns the dashboard metrics for a month
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	month, year, err := httputil.MonthYearQuery(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	metrics, err := h.service.Dashboard(r.Context(), month, year, time.Now())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, metrics)
}
