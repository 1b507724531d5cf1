package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

// HandlerFunc processes one decoded shipment event.
type HandlerFunc func(ctx context.Context, ev usecase.ShipmentStatusMsg) error

// Consumer consumes the shipment topic with a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
	Log    *slog.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc, log *slog.Logger) *Consumer {
	return &Consumer{
		Group:  group,
		Topics: topics,
		Handle: h,
		Log:    log,
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	handler := &cgHandler{handle: c.Handle, log: c.Log}
	for {
		if err := c.Group.Consume(ctx, c.Topics, handler); err != nil {
			return err
		}
		// Consume returns on ctx cancellation or a rebalance.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
	log    *slog.Logger
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var ev usecase.ShipmentStatusMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			if h.log != nil {
				h.log.Error("kafka decode error", "err", err, "offset", msg.Offset)
			}
			// mark to avoid reprocessing poison
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(sess.Context(), ev); err != nil {
			if h.log != nil {
				h.log.Error("shipment handler error",
					"err", err, "key", string(msg.Key), "offset", msg.Offset)
			}
			// not marked; retried on the next poll
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
