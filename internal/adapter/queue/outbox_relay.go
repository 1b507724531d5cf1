package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_events_published_total",
			Help: "Domain events drained from the outbox to the broker",
		},
		[]string{"event"},
	)
	eventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_events_failed_total",
			Help: "Domain event publish attempts that failed",
		},
		[]string{"event"},
	)
)

type eventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, body []byte) error
}

// OutboxRelay drains pending outbox rows to the broker. Rows that fail to
// publish are retried with linear backoff scaled by their retry count; a
// row that exhausts maxRetries is parked as dead so one poison payload
// cannot occupy the relay forever.
type OutboxRelay struct {
	outbox     usecase.OutboxStore
	pub        eventPublisher
	interval   time.Duration
	batch      int
	backoff    time.Duration
	maxRetries int
	log        *slog.Logger
}

func NewOutboxRelay(outbox usecase.OutboxStore, pub eventPublisher, interval time.Duration, batch int, log *slog.Logger) *OutboxRelay {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &OutboxRelay{
		outbox:     outbox,
		pub:        pub,
		interval:   interval,
		batch:      batch,
		backoff:    5 * time.Second,
		maxRetries: 10,
		log:        log,
	}
}

// Start blocks until ctx is cancelled; run it in its own goroutine.
func (r *OutboxRelay) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *OutboxRelay) drain(ctx context.Context) {
	rows, err := r.outbox.FetchPending(ctx, r.batch)
	if err != nil {
		r.log.Error("outbox fetch failed", "err", err)
		return
	}
	for _, row := range rows {
		name := eventNameOf(row.Payload)
		if err := r.pub.PublishEvent(ctx, name, row.Payload); err != nil {
			eventsFailed.WithLabelValues(name).Inc()
			if row.RetryCount+1 >= r.maxRetries {
				r.log.Error("outbox row exhausted retries, parking as dead",
					"outbox_id", row.ID, "event", name, "retries", row.RetryCount, "err", err)
				if err := r.outbox.MarkDead(ctx, row.ID); err != nil {
					r.log.Error("outbox mark-dead failed", "outbox_id", row.ID, "err", err)
				}
				continue
			}
			r.log.Warn("outbox publish failed",
				"outbox_id", row.ID, "event", name, "retries", row.RetryCount, "err", err)
			next := time.Now().Add(r.backoff * time.Duration(row.RetryCount+1))
			if err := r.outbox.MarkFailed(ctx, row.ID, next); err != nil {
				r.log.Error("outbox mark-failed failed", "outbox_id", row.ID, "err", err)
			}
			continue
		}
		eventsPublished.WithLabelValues(name).Inc()
		if err := r.outbox.MarkSent(ctx, row.ID); err != nil {
			// the event will be re-published; consumers must be idempotent
			r.log.Error("outbox mark-sent failed", "outbox_id", row.ID, "err", err)
		}
	}
}

// eventNameOf peeks the envelope for the routing key.
func eventNameOf(payload []byte) string {
	var head struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Name == "" {
		return "sale.unknown"
	}
	return head.Name
}
