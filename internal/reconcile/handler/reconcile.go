package handler

import (
	"net/http"
	"time"

	"github.com/vaxstock/vaxstock-backend/internal/reconcile/service"
	"github.com/vaxstock/vaxstock-backend/pkg/httputil"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

// ReconcileHandler exposes the reconciliation engine over HTTP
type ReconcileHandler struct {
	service *service.ReconcileService
	logger  *logger.Logger
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(svc *service.ReconcileService, log *logger.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		service: svc,
		logger:  log,
	}
}

// Chain returns the twelve-month stock chain of every item for a year
func (h *ReconcileHandler) Chain(w http.ResponseWriter, r *http.Request) {
	year, err := httputil.YearParam(r.URL.Query().Get("year"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	chain, items, err := h.service.Chain(r.Context(), year)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"items": items,
		"chain": chain,
	})
}

// Panorama returns the FIFO batch balances as of the end of a month.
// With item_id set the result holds that one item; otherwise all items.
func (h *ReconcileHandler) Panorama(w http.ResponseWriter, r *http.Request) {
	month, year, err := httputil.MonthYearQuery(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	itemID := r.URL.Query().Get("item_id")

	panorama, err := h.service.Panorama(r.Context(), itemID, month, year, time.Now())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"month":    month,
		"year":     year,
		"panorama": panorama,
	})
}

// Breakdown returns the per-checkpoint consumption of every item for a
// month.
func (h *ReconcileHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	month, year, err := httputil.MonthYearQuery(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	breakdown, err := h.service.Breakdown(r.Context(), month, year)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"month":     month,
		"year":      year,
		"breakdown": breakdown,
	})
}
