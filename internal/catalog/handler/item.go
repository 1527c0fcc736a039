package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vaxstock/vaxstock-backend/internal/catalog/events"
	"github.com/vaxstock/vaxstock-backend/internal/catalog/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/httputil"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

// ItemHandler handles catalog item endpoints
type ItemHandler struct {
	repo      *repository.ItemRepository
	publisher *events.CatalogEventPublisher
	logger    *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(repo *repository.ItemRepository, publisher *events.CatalogEventPublisher, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

type createItemRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Unit         string  `json:"unit" validate:"max=50"`
	Dosage       int     `json:"dosage" validate:"gte=0"`
	Manufacturer *string `json:"manufacturer" validate:"omitempty,max=255"`
}

type updateConfigRequest struct {
	AverageCostCents int64 `json:"average_cost_cents" validate:"gte=0"`
	MinStock         int   `json:"min_stock" validate:"gte=0"`
}

type reorderRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,uuid"`
}

// List returns all items in display order
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, items)
}

// Get returns one item with its monthly configs
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	configs, err := h.repo.GetConfigs(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"item":    item,
		"configs": configs,
	})
}

// Create adds an item and seeds its twelve monthly configs
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	item := &repository.Item{
		Name:         req.Name,
		Unit:         req.Unit,
		Dosage:       req.Dosage,
		Manufacturer: req.Manufacturer,
	}
	if err := h.repo.Create(r.Context(), item); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishItemCreated(r.Context(), item)
	httputil.Created(w, item)
}

// Update edits an item's descriptive fields
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req createItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	item := &repository.Item{
		ID:           id,
		Name:         req.Name,
		Unit:         req.Unit,
		Dosage:       req.Dosage,
		Manufacturer: req.Manufacturer,
	}
	if item.Dosage == 0 {
		item.Dosage = 1
	}
	if err := h.repo.Update(r.Context(), item); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishItemUpdated(r.Context(), item)
	httputil.JSON(w, http.StatusOK, item)
}

// Delete removes an item from the catalog
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.repo.SoftDelete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishItemDeleted(r.Context(), item)
	httputil.NoContent(w)
}

// Reorder rewrites the display order of the catalog
func (h *ItemHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.repo.Reorder(r.Context(), req.ItemIDs); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// UpdateConfig edits one item-month config
func (h *ItemHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	month, err := httputil.MonthParam(chi.URLParam(r, "month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req updateConfigRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	cfg, err := h.repo.UpdateConfig(r.Context(), id, month, req.AverageCostCents, req.MinStock)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cfg)
}

// GetConfigs returns the twelve monthly configs of an item
func (h *ItemHandler) GetConfigs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	configs, err := h.repo.GetConfigs(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, configs)
}
