package usecase

import (
	"context"
	"time"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

// Collaborator ports. Implementations live under internal/adapter; absence
// is reported with domain.ErrNotFound-kind errors, never nil-nil.

type CartStore interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	Create(ctx context.Context, c *domain.Cart) error
	Update(ctx context.Context, c *domain.Cart) error
	Delete(ctx context.Context, id string) error
}

type SaleStore interface {
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	Create(ctx context.Context, s *domain.Sale) error
	// Update persists the aggregate with an optimistic version check and
	// returns a domain.ErrConflict-kind error when another writer won.
	Update(ctx context.Context, s *domain.Sale) error
}

// CheckoutStore is the transactional boundary for checkout: the sale insert,
// the cart deletion and the outbox append of the SaleCreated event commit or
// roll back together.
type CheckoutStore interface {
	CreateSaleRetireCart(ctx context.Context, sale *domain.Sale, cartID string, event []byte) error
}

type ProductCatalog interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// EventBus publishes a domain event snapshot. Delivery is at-least-once;
// the use cases treat a publish failure after a successful persist as
// non-fatal but never swallow it silently.
type EventBus interface {
	Publish(ctx context.Context, e Event) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// SaleCache is a best-effort read cache for sale statuses.
type SaleCache interface {
	SetStatus(ctx context.Context, saleID, status string) error
	GetStatus(ctx context.Context, saleID string) (string, bool, error)
}

// OutboxRow is one pending event intent persisted next to the aggregates.
type OutboxRow struct {
	ID         int64
	Channel    string
	Payload    []byte
	RetryCount int
}

type OutboxStore interface {
	Append(ctx context.Context, channel string, payload []byte) error
	FetchPending(ctx context.Context, limit int) ([]OutboxRow, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, nextAttempt time.Time) error
	// MarkDead parks a row that exhausted its retries; it is never fetched
	// again and waits for an operator.
	MarkDead(ctx context.Context, id int64) error
}
