package events

import (
	"context"

	"github.com/vaxstock/vaxstock-backend/internal/orders/repository"
	"github.com/vaxstock/vaxstock-backend/pkg/account"
	"github.com/vaxstock/vaxstock-backend/pkg/logger"
	"github.com/vaxstock/vaxstock-backend/pkg/messaging"
)

// OrderEventPublisher publishes order-related events
type OrderEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewOrderEventPublisher creates a new order event publisher
func NewOrderEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*OrderEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeStockEvents, "stock-service", log)
	if err != nil {
		return nil, err
	}

	return &OrderEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishOrderCreated publishes an order created event
func (p *OrderEventPublisher) PublishOrderCreated(ctx context.Context, order *repository.Order) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.OrderCreatedEvent{
		AccountID:   accountID,
		OrderID:     order.ID,
		RequestName: order.RequestName,
		ItemCount:   len(order.Items),
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderCreated, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order created event")
	}
}

// PublishOrderReceived publishes an order received event
func (p *OrderEventPublisher) PublishOrderReceived(ctx context.Context, order *repository.Order) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.OrderReceivedEvent{
		AccountID:   accountID,
		OrderID:     order.ID,
		RequestName: order.RequestName,
		ItemCount:   len(order.Items),
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderReceived, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order received event")
	}
}

// PublishOrderUpdated publishes an order updated event
func (p *OrderEventPublisher) PublishOrderUpdated(ctx context.Context, orderID string) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.OrderUpdatedEvent{
		AccountID: accountID,
		OrderID:   orderID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to publish order updated event")
	}
}

// PublishOrderDeleted publishes an order deleted event
func (p *OrderEventPublisher) PublishOrderDeleted(ctx context.Context, order *repository.Order) {
	if p == nil {
		return
	}
	accountID, _ := account.AccountID(ctx)

	data := messaging.OrderDeletedEvent{
		AccountID:   accountID,
		OrderID:     order.ID,
		RequestName: order.RequestName,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order deleted event")
	}
}
