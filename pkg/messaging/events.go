package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Catalog events
	EventItemCreated = "catalog.item.created"
	EventItemUpdated = "catalog.item.updated"
	EventItemDeleted = "catalog.item.deleted"

	// Order events
	EventOrderCreated  = "order.created"
	EventOrderReceived = "order.received"
	EventOrderUpdated  = "order.updated"
	EventOrderDeleted  = "order.deleted"

	// Inventory events
	EventEntryUpdated      = "inventory.entry.updated"
	EventDatesUpdated      = "inventory.dates.updated"
	EventProductionUpdated = "inventory.production.updated"
)

// Exchange names
const (
	ExchangeStockEvents = "stock.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Catalog events

// ItemCreatedEvent is published when a catalog item is created
type ItemCreatedEvent struct {
	AccountID string `json:"account_id"`
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Dosage    int    `json:"dosage"`
}

// ItemUpdatedEvent is published when a catalog item is updated
type ItemUpdatedEvent struct {
	AccountID string `json:"account_id"`
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
}

// ItemDeletedEvent is published when a catalog item is deleted
type ItemDeletedEvent struct {
	AccountID string `json:"account_id"`
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
}

// Order events

// OrderCreatedEvent is published when a purchase order is created
type OrderCreatedEvent struct {
	AccountID   string `json:"account_id"`
	OrderID     string `json:"order_id"`
	RequestName string `json:"request_name"`
	ItemCount   int    `json:"item_count"`
}

// OrderReceivedEvent is published when a purchase order transitions to RECEIVED
type OrderReceivedEvent struct {
	AccountID   string `json:"account_id"`
	OrderID     string `json:"order_id"`
	RequestName string `json:"request_name"`
	ItemCount   int    `json:"item_count"`
}

// OrderUpdatedEvent is published when order or receipt fields change
type OrderUpdatedEvent struct {
	AccountID string `json:"account_id"`
	OrderID   string `json:"order_id"`
}

// OrderDeletedEvent is published when an order is deleted
type OrderDeletedEvent struct {
	AccountID   string `json:"account_id"`
	OrderID     string `json:"order_id"`
	RequestName string `json:"request_name"`
}

// Inventory events

// EntryUpdatedEvent is published when a monthly stock count entry changes
type EntryUpdatedEvent struct {
	AccountID  string `json:"account_id"`
	ItemID     string `json:"item_id"`
	MonthIndex int    `json:"month_index"`
	Year       int    `json:"year"`
}

// DatesUpdatedEvent is published when checkpoint dates for a month change
type DatesUpdatedEvent struct {
	AccountID  string `json:"account_id"`
	MonthIndex int    `json:"month_index"`
	Year       int    `json:"year"`
}

// ProductionUpdatedEvent is published when a monthly production count changes
type ProductionUpdatedEvent struct {
	AccountID  string `json:"account_id"`
	MonthIndex int    `json:"month_index"`
	Year       int    `json:"year"`
	Count      int    `json:"count"`
}
