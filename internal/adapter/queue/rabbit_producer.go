package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const saleEventsExchange = "sale.events"

// SaleEventPublisher pushes domain-event envelopes onto the sale.events
// topic exchange; the event name is the routing key, so subscribers can bind
// to sale.* or saleitem.* selectively.
type SaleEventPublisher struct {
	ch *amqp.Channel
}

// NewSaleEventPublisher declares the exchange once at startup and enables
// publisher confirms.
func NewSaleEventPublisher(ch *amqp.Channel) (*SaleEventPublisher, error) {
	if err := ch.ExchangeDeclare(
		saleEventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &SaleEventPublisher{ch: ch}, nil
}

// PublishEvent sends one already-encoded event envelope.
func (p *SaleEventPublisher) PublishEvent(ctx context.Context, routingKey string, body []byte) error {
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(
		ctx,
		saleEventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}
