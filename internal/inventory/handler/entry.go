package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vaxstock/vaxstock-backend/internal/inventory/events"
	"github.com/vaxstock/vaxstock-backend/internal/inventory/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/errors"
	"github.com/vaxstock/vaxstock-backend/pkg/httputil"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// EntryHandler handles stock recording endpoints: monthly counts,
// checkpoint dates and production.
type EntryHandler struct {
	repo      *repository.EntryRepository
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(repo *repository.EntryRepository, publisher *events.InventoryEventPublisher, log *logger.Logger) *EntryHandler {
	return &EntryHandler{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

type upsertEntryRequest struct {
	ItemID             string `json:"item_id" validate:"required,uuid"`
	MonthIndex         int    `json:"month_index" validate:"gte=0,lte=11"`
	Year               int    `json:"year" validate:"gte=1970,lte=9999"`
	CountS1            *int   `json:"count_s1" validate:"omitempty,gte=0"`
	CountS2            *int   `json:"count_s2" validate:"omitempty,gte=0"`
	CountS3            *int   `json:"count_s3" validate:"omitempty,gte=0"`
	CountS4            *int   `json:"count_s4" validate:"omitempty,gte=0"`
	ManualInitialStock *int   `json:"manual_initial_stock" validate:"omitempty,gte=0"`
}

type upsertDatesRequest struct {
	Year   int    `json:"year" validate:"gte=1970,lte=9999"`
	DateS1 string `json:"date_s1" validate:"omitempty,datetime=2006-01-02"`
	DateS2 string `json:"date_s2" validate:"omitempty,datetime=2006-01-02"`
	DateS3 string `json:"date_s3" validate:"omitempty,datetime=2006-01-02"`
	DateS4 string `json:"date_s4" validate:"omitempty,datetime=2006-01-02"`
}

type upsertProductionRequest struct {
	Year  int `json:"year" validate:"gte=1970,lte=9999"`
	Count int `json:"count" validate:"gte=0"`
}

// ListEntries returns all stock count entries of a year
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	year, err := httputil.YearParam(r.URL.Query().Get("year"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	entries, err := h.repo.ListEntries(r.Context(), year)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, entries)
}

// UpsertEntry creates or replaces the counts of one item-month
func (h *EntryHandler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	var req upsertEntryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	entry := &repository.MonthEntry{
		ItemID:             req.ItemID,
		MonthIndex:         req.MonthIndex,
		Year:               req.Year,
		CountS1:            req.CountS1,
		CountS2:            req.CountS2,
		CountS3:            req.CountS3,
		CountS4:            req.CountS4,
		ManualInitialStock: req.ManualInitialStock,
	}
	if err := h.repo.UpsertEntry(r.Context(), entry); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishEntryUpdated(r.Context(), entry)
	httputil.JSON(w, http.StatusOK, entry)
}

// ListDates returns the checkpoint dates of a year
func (h *EntryHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	year, err := httputil.YearParam(r.URL.Query().Get("year"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	dates, err := h.repo.ListDates(r.Context(), year)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, dates)
}

// UpsertDates creates or replaces the checkpoint dates of a month
func (h *EntryHandler) UpsertDates(w http.ResponseWriter, r *http.Request) {
	month, err := httputil.MonthParam(chi.URLParam(r, "month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req upsertDatesRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	dates := &repository.MonthDates{MonthIndex: month, Year: req.Year}
	raws := []string{req.DateS1, req.DateS2, req.DateS3, req.DateS4}
	dsts := []**time.Time{&dates.DateS1, &dates.DateS2, &dates.DateS3, &dates.DateS4}
	for i, raw := range raws {
		if raw == "" {
			continue
		}
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			httputil.Error(w, errors.BadRequest("checkpoint dates must be valid dates"))
			return
		}
		*dsts[i] = &d
	}

	if err := h.repo.UpsertDates(r.Context(), dates); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishDatesUpdated(r.Context(), dates)
	httputil.JSON(w, http.StatusOK, dates)
}

// UpsertProduction creates or replaces the production count of a month
func (h *EntryHandler) UpsertProduction(w http.ResponseWriter, r *http.Request) {
	month, err := httputil.MonthParam(chi.URLParam(r, "month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req upsertProductionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	prod := &repository.MonthlyProduction{
		MonthIndex: month,
		Year:       req.Year,
		Count:      req.Count,
	}
	if err := h.repo.UpsertProduction(r.Context(), prod); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishProductionUpdated(r.Context(), prod)
	httputil.JSON(w, http.StatusOK, prod)
}
