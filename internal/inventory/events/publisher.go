package events

import (
	"context"

	"github.com/vaxstock/vaxstock-backend/internal/inventory/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/account"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
	"github.com/vaxstock/vaxstock-backend/pkg/messaging"
)

// InventoryEventPublisher publishes stock recording events
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeStockEvents, "stock-service", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishEntryUpdated publishes a stock count entry change
func (p *InventoryEventPublisher) PublishEntryUpdated(ctx context.Context, entry *repository.MonthEntry) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.EntryUpdatedEvent{
		AccountID:  accountID,
		ItemID:     entry.ItemID,
		MonthIndex: entry.MonthIndex,
		Year:       entry.Year,
	}

	if err := p.publisher.Publish(ctx, messaging.EventEntryUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", entry.ItemID).Msg("failed to publish entry updated event")
	}
}

// PublishDatesUpdated publishes a checkpoint dates change
func (p *InventoryEventPublisher) PublishDatesUpdated(ctx context.Context, dates *repository.MonthDates) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.DatesUpdatedEvent{
		AccountID:  accountID,
		MonthIndex: dates.MonthIndex,
		Year:       dates.Year,
	}

	if err := p.publisher.Publish(ctx, messaging.EventDatesUpdated, data); err != nil {
		p.logger.Error().Err(err).Int("month", dates.MonthIndex).Msg("failed to publish dates updated event")
	}
}

// PublishProductionUpdated publishes a production count change
func (p *InventoryEventPublisher) PublishProductionUpdated(ctx context.Context, prod *repository.MonthlyProduction) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.ProductionUpdatedEvent{
		AccountID:  accountID,
		MonthIndex: prod.MonthIndex,
		Year:       prod.Year,
		Count:      prod.Count,
	}

	if err := p.publisher.Publish(ctx, messaging.EventProductionUpdated, data); err != nil {
		p.logger.Error().Err(err).Int("month", prod.MonthIndex).Msg("failed to publish production updated event")
	}
}
