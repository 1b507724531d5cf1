package queue

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

type memOutbox struct {
	rows   []usecase.OutboxRow
	sent   []int64
	failed []int64
	dead   []int64
}

func (m *memOutbox) Append(_ context.Context, channel string, payload []byte) error {
	m.rows = append(m.rows, usecase.OutboxRow{
		ID: int64(len(m.rows) + 1), Channel: channel, Payload: payload,
	})
	return nil
}

func (m *memOutbox) FetchPending(_ context.Context, limit int) ([]usecase.OutboxRow, error) {
	if limit > len(m.rows) {
		limit = len(m.rows)
	}
	return m.rows[:limit], nil
}

func (m *memOutbox) MarkSent(_ context.Context, id int64) error {
	m.sent = append(m.sent, id)
	m.remove(id)
	return nil
}

func (m *memOutbox) MarkFailed(_ context.Context, id int64, _ time.Time) error {
	m.failed = append(m.failed, id)
	m.remove(id)
	return nil
}

func (m *memOutbox) MarkDead(_ context.Context, id int64) error {
	m.dead = append(m.dead, id)
	m.remove(id)
	return nil
}

func (m *memOutbox) remove(id int64) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return
		}
	}
}

type memPublisher struct {
	keys   []string
	bodies [][]byte
	fail   map[string]error
}

func (m *memPublisher) PublishEvent(_ context.Context, routingKey string, body []byte) error {
	if err := m.fail[routingKey]; err != nil {
		return err
	}
	m.keys = append(m.keys, routingKey)
	m.bodies = append(m.bodies, body)
	return nil
}

func testRelay(outbox usecase.OutboxStore, pub eventPublisher) *OutboxRelay {
	return NewOutboxRelay(outbox, pub, time.Millisecond, 10, slog.Default())
}

func TestRelayDrainsPendingRows(t *testing.T) {
	outbox := &memOutbox{}
	ctx := context.Background()
	require.NoError(t, outbox.Append(ctx, "sales.events.v1", []byte(`{"name":"sale.created","payload":{}}`)))
	require.NoError(t, outbox.Append(ctx, "sales.events.v1", []byte(`{"name":"sale.cancelled","payload":{}}`)))

	pub := &memPublisher{}
	testRelay(outbox, pub).drain(ctx)

	assert.Equal(t, []string{"sale.created", "sale.cancelled"}, pub.keys)
	assert.Equal(t, []int64{1, 2}, outbox.sent)
	assert.Empty(t, outbox.failed)
	assert.Empty(t, outbox.rows)
}

func TestRelayMarksFailedRowsForRetry(t *testing.T) {
	outbox := &memOutbox{}
	ctx := context.Background()
	require.NoError(t, outbox.Append(ctx, "sales.events.v1", []byte(`{"name":"sale.created","payload":{}}`)))
	require.NoError(t, outbox.Append(ctx, "sales.events.v1", []byte(`{"name":"sale.modified","payload":{}}`)))

	pub := &memPublisher{fail: map[string]error{"sale.created": errors.New("channel closed")}}
	testRelay(outbox, pub).drain(ctx)

	// the failing row is parked for retry, the healthy one still goes out
	assert.Equal(t, []int64{1}, outbox.failed)
	assert.Equal(t, []int64{2}, outbox.sent)
	assert.Equal(t, []string{"sale.modified"}, pub.keys)
	assert.Empty(t, outbox.dead)
}

func TestRelayParksPoisonRowsAfterMaxRetries(t *testing.T) {
	outbox := &memOutbox{rows: []usecase.OutboxRow{
		{ID: 7, Channel: "sales.events.v1",
			Payload: []byte(`{"name":"sale.created","payload":{}}`), RetryCount: 9},
	}}

	pub := &memPublisher{fail: map[string]error{"sale.created": errors.New("channel closed")}}
	testRelay(outbox, pub).drain(context.Background())

	// tenth failure parks the row instead of scheduling another retry
	assert.Equal(t, []int64{7}, outbox.dead)
	assert.Empty(t, outbox.failed)
	assert.Empty(t, outbox.rows)
}

func TestRelayRoutesUnparseablePayloads(t *testing.T) {
	outbox := &memOutbox{}
	ctx := context.Background()
	require.NoError(t, outbox.Append(ctx, "sales.events.v1", []byte(`not json`)))

	pub := &memPublisher{}
	testRelay(outbox, pub).drain(ctx)

	assert.Equal(t, []string{"sale.unknown"}, pub.keys)
}

func TestEventNameOf(t *testing.T) {
	assert.Equal(t, "saleitem.cancelled", eventNameOf([]byte(`{"name":"saleitem.cancelled"}`)))
	assert.Equal(t, "sale.unknown", eventNameOf([]byte(`{}`)))
	assert.Equal(t, "sale.unknown", eventNameOf([]byte(`garbage`)))
}

func TestRelayStartStopsOnContextCancel(t *testing.T) {
	outbox := &memOutbox{}
	pub := &memPublisher{}
	relay := testRelay(outbox, pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Start(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}
