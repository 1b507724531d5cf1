package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

// outboxChannel is the single channel sale events flow through; the event
// name inside the envelope becomes the routing key at publish time.
const outboxChannel = "sales.events.v1"

type MySQLOutboxRepo struct{ db *sql.DB }

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo { return &MySQLOutboxRepo{db: db} }

func (r *MySQLOutboxRepo) Append(ctx context.Context, channel string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO outbox (channel,payload,status,retry_count,next_attempt_at,created_at)
VALUES (?,?,'PENDING',0,NOW(),NOW())`, channel, payload)
	if err != nil {
		return domain.Dependencyf("append outbox: %v", err)
	}
	return nil
}

func (r *MySQLOutboxRepo) FetchPending(ctx context.Context, limit int) ([]usecase.OutboxRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,channel,payload,retry_count
FROM outbox
WHERE status='PENDING' AND next_attempt_at<=NOW()
ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, domain.Dependencyf("fetch outbox: %v", err)
	}
	defer rows.Close()

	var out []usecase.OutboxRow
	for rows.Next() {
		var row usecase.OutboxRow
		if err := rows.Scan(&row.ID, &row.Channel, &row.Payload, &row.RetryCount); err != nil {
			return nil, domain.Dependencyf("scan outbox row: %v", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *MySQLOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status='SENT', sent_at=NOW() WHERE id=?`, id)
	if err != nil {
		return domain.Dependencyf("mark outbox sent: %v", err)
	}
	return nil
}

func (r *MySQLOutboxRepo) MarkFailed(ctx context.Context, id int64, nextAttempt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE outbox SET retry_count=retry_count+1, next_attempt_at=? WHERE id=?`,
		nextAttempt, id)
	if err != nil {
		return domain.Dependencyf("mark outbox failed: %v", err)
	}
	return nil
}

func (r *MySQLOutboxRepo) MarkDead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status='FAILED' WHERE id=?`, id)
	if err != nil {
		return domain.Dependencyf("mark outbox dead: %v", err)
	}
	return nil
}

var _ usecase.OutboxStore = (*MySQLOutboxRepo)(nil)

func insertOutboxTx(ctx context.Context, tx *sql.Tx, channel string, payload []byte) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO outbox (channel,payload,status,retry_count,next_attempt_at,created_at)
VALUES (?,?,'PENDING',0,NOW(),NOW())`, channel, payload)
	if err != nil {
		return domain.Dependencyf("append outbox: %v", err)
	}
	return nil
}

// OutboxEventBus satisfies the EventBus port by appending event intents to
// the outbox; the relay publishes them to the broker later. This is the
// production wiring of Publish.
type OutboxEventBus struct{ outbox usecase.OutboxStore }

func NewOutboxEventBus(outbox usecase.OutboxStore) *OutboxEventBus {
	return &OutboxEventBus{outbox: outbox}
}

func (b *OutboxEventBus) Publish(ctx context.Context, e usecase.Event) error {
	payload, err := usecase.EncodeEvent(e)
	if err != nil {
		return domain.Dependencyf("encode %s: %v", e.EventName(), err)
	}
	return b.outbox.Append(ctx, outboxChannel, payload)
}

var _ usecase.EventBus = (*OutboxEventBus)(nil)
