package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

const (
	paymentExchange   = "payment.events"
	paymentRoutingKey = "payment.confirmed"
	paymentQueueName  = "sale.payment.q"
)

// EnsurePaymentQueue declares the queue this service consumes payment
// confirmations from and binds it to the payment exchange.
func EnsurePaymentQueue(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(paymentExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(paymentQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, paymentRoutingKey, paymentExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	return nil
}

// PaymentConfirmedHandler settles pending sales from payment outcomes:
// APPROVED confirms the sale, anything else cancels it.
type PaymentConfirmedHandler struct {
	sales usecase.SaleStore
	bus   usecase.EventBus
}

func NewPaymentConfirmedHandler(sales usecase.SaleStore, bus usecase.EventBus) *PaymentConfirmedHandler {
	return &PaymentConfirmedHandler{sales: sales, bus: bus}
}

// HandlePayment is used with JSONHandler[usecase.PaymentConfirmedMsg].
// It must be idempotent: a replayed confirmation for an already-settled sale
// comes back as a business-rule error, which we ACK rather than requeue.
func (h *PaymentConfirmedHandler) HandlePayment(ctx context.Context, msg usecase.PaymentConfirmedMsg) error {
	sale, err := h.sales.GetByID(ctx, msg.SaleID)
	if err != nil {
		return err
	}

	var event usecase.Event
	if msg.Status == "APPROVED" {
		if err := sale.Confirm(); err != nil {
			return nil // already settled; drop the replay
		}
		event = usecase.SaleModifiedEvent{Sale: usecase.SnapshotSale(sale)}
	} else {
		if err := sale.Cancel(); err != nil {
			return nil
		}
		event = usecase.SaleCancelledEvent{Sale: usecase.SnapshotSale(sale)}
	}

	if err := h.sales.Update(ctx, sale); err != nil {
		return err
	}
	return h.bus.Publish(ctx, event)
}
