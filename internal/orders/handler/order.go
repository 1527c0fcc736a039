package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vaxstock/vaxstock-backend/internal/orders/events"
	"github.com/vaxstock/vaxstock-backend/internal/orders/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/errors"
	"github.com/vaxstock/vaxstock-backend/pkg/httputil"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// OrderHandler handles purchase order endpoints
type OrderHandler struct {
	repo      *repository.OrderRepository
	publisher *events.OrderEventPublisher
	logger    *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(repo *repository.OrderRepository, publisher *events.OrderEventPublisher, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

type orderLineRequest struct {
	ItemID        string `json:"item_id" validate:"required,uuid"`
	Quantity      int    `json:"quantity" validate:"gte=0"`
	UnitCostCents int64  `json:"unit_cost_cents" validate:"gte=0"`
}

type orderRequest struct {
	RequestName  string             `json:"request_name" validate:"required,max=255"`
	ExpectedDate string             `json:"expected_date" validate:"omitempty,datetime=2006-01-02"`
	Items        []orderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type receiptLineRequest struct {
	OrderItemID string `json:"order_item_id" validate:"required,uuid"`
	ActualDate  string `json:"actual_date" validate:"required,datetime=2006-01-02"`
	BatchNumber string `json:"batch_number" validate:"max=100"`
	ExpiryDate  string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

type receiveRequest struct {
	Lines []receiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// List returns all orders, newest first
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, orders)
}

// Get returns one order with its lines
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, order)
}

// Create registers a new pending order
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	order, err := h.decodeOrder(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), order); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishOrderCreated(r.Context(), order)
	httputil.Created(w, order)
}

// Update restructures a pending order
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	order, err := h.decodeOrder(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	order.ID = chi.URLParam(r, "id")

	if err := h.repo.Update(r.Context(), order); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishOrderUpdated(r.Context(), order.ID)

	updated, err := h.repo.GetByID(r.Context(), order.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, updated)
}

// Delete removes an order
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishOrderDeleted(r.Context(), order)
	httputil.NoContent(w)
}

// Receive marks a pending order as received, stamping the receipt
// fields on each line. A second receive is rejected with a conflict.
func (h *OrderHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	receipts, err := h.decodeReceipts(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.repo.Receive(r.Context(), id, receipts); err != nil {
		httputil.Error(w, err)
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishOrderReceived(r.Context(), order)
	httputil.JSON(w, http.StatusOK, order)
}

// UpdateReceipt corrects receipt fields on a received order without
// changing its status.
func (h *OrderHandler) UpdateReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	receipts, err := h.decodeReceipts(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.repo.UpdateReceipt(r.Context(), id, receipts); err != nil {
		httputil.Error(w, err)
		return
	}

	h.publisher.PublishOrderUpdated(r.Context(), id)

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) decodeOrder(r *http.Request) (*repository.Order, error) {
	var req orderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	order := &repository.Order{RequestName: req.RequestName}
	if req.ExpectedDate != "" {
		d, err := time.Parse(dateLayout, req.ExpectedDate)
		if err != nil {
			return nil, errors.BadRequest("expected_date must be a valid date")
		}
		order.ExpectedDate = &d
	}

	for _, line := range req.Items {
		order.Items = append(order.Items, repository.OrderItem{
			ItemID:        line.ItemID,
			Quantity:      line.Quantity,
			UnitCostCents: line.UnitCostCents,
		})
	}

	return order, nil
}

func (h *OrderHandler) decodeReceipts(r *http.Request) ([]repository.LineReceipt, error) {
	var req receiveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	receipts := make([]repository.LineReceipt, 0, len(req.Lines))
	for _, line := range req.Lines {
		actual, err := time.Parse(dateLayout, line.ActualDate)
		if err != nil {
			return nil, errors.BadRequest("actual_date must be a valid date")
		}

		receipt := repository.LineReceipt{
			OrderItemID: line.OrderItemID,
			ActualDate:  actual,
		}
		if line.BatchNumber != "" {
			b := line.BatchNumber
			receipt.BatchNumber = &b
		}
		if line.ExpiryDate != "" {
			e, err := time.Parse(dateLayout, line.ExpiryDate)
			if err != nil {
				return nil, errors.BadRequest("expiry_date must be a valid date")
			}
			receipt.ExpiryDate = &e
		}

		receipts = append(receipts, receipt)
	}

	return receipts, nil
}
