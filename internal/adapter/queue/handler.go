package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivery. Handlers should be idempotent: nil means
// ACK, an error means NACK with requeue behavior decided by the Router.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}
