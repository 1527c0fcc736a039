package events

import (
	"context"

	"github.com/vaxstock/vaxstock-backend/internal/catalog/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/account"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
	"github.com/vaxstock/vaxstock-backend/pkg/messaging"
)

// CatalogEventPublisher publishes catalog-related events
type CatalogEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewCatalogEventPublisher creates a new catalog event publisher
func NewCatalogEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*CatalogEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeStockEvents, "stock-service", log)
	if err != nil {
		return nil, err
	}

	return &CatalogEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishItemCreated publishes an item created event
func (p *CatalogEventPublisher) PublishItemCreated(ctx context.Context, item *repository.Item) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.ItemCreatedEvent{
		AccountID: accountID,
		ItemID:    item.ID,
		Name:      item.Name,
		Unit:      item.Unit,
		Dosage:    item.Dosage,
	}

	if err := p.publisher.Publish(ctx, messaging.EventItemCreated, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish item created event")
	}
}

// PublishItemUpdated publishes an item updated event
func (p *CatalogEventPublisher) PublishItemUpdated(ctx context.Context, item *repository.Item) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.ItemUpdatedEvent{
		AccountID: accountID,
		ItemID:    item.ID,
		Name:      item.Name,
	}

	if err := p.publisher.Publish(ctx, messaging.EventItemUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish item updated event")
	}
}

// PublishItemDeleted publishes an item deleted event
func (p *CatalogEventPublisher) PublishItemDeleted(ctx context.Context, item *repository.Item) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.ItemDeletedEvent{
		AccountID: accountID,
		ItemID:    item.ID,
		Name:      item.Name,
	}

	if err := p.publisher.Publish(ctx, messaging.EventItemDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish item deleted event")
	}
}
