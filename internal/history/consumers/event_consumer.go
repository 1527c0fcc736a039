package consumers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vaxstock/vaxstock-backend/internal/history/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
	"github.com/vaxstock/vaxstock-backend/pkg/messaging"
)

// EventConsumer records every stock event into the audit trail.
type EventConsumer struct {
	consumer *messaging.Consumer
	repo     *repository.HistoryRepository
	logger   *logger.Logger
}

// NewEventConsumer creates the history consumer bound to the stock
// events exchange with a catch-all subscription.
func NewEventConsumer(rmq *messaging.RabbitMQ, repo *repository.HistoryRepository, log *logger.Logger) (*EventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "history.stock-events", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeStockEvents, "#"); err != nil {
		return nil, err
	}

	c := &EventConsumer{
		consumer: consumer,
		repo:     repo,
		logger:   log,
	}
	consumer.RegisterFallbackHandler(c.record)

	return c, nil
}

// Start begins consuming events
func (c *EventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *EventConsumer) record(ctx context.Context, event *messaging.Event) error {
	var envelope struct {
		AccountID string `json:"account_id"`
	}
	if err := json.Unmarshal(event.Data, &envelope); err != nil || envelope.AccountID == "" {
		// Events without an account have no audit home; drop them.
		c.logger.Warn().Str("event_type", event.Type).Msg("event without account id, skipping")
		return nil
	}

	err := c.repo.Record(ctx, envelope.AccountID, entryType(event.Type), event.Type, event.Data)
	if err != nil {
		return err
	}

	c.logger.Debug().
		Str("event_type", event.Type).
		Str("account_id", envelope.AccountID).
		Msg("history entry recorded")
	return nil
}

// entryType maps an event routing key to an audit entry type by its
// first segment.
func entryType(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "catalog."):
		return repository.TypeCatalog
	case strings.HasPrefix(eventType, "order."):
		return repository.TypeOrder
	default:
		return repository.TypeInventory
	}
}
