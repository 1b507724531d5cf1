package usecase

import (
	"context"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/logging"
)

// CancelItem cancels one line of a sale and recomputes the sale total from
// the remaining non-cancelled lines.
type CancelItem struct {
	sales SaleStore
	bus   EventBus
	cache SaleCache
}

func NewCancelItem(sales SaleStore, bus EventBus, cache SaleCache) *CancelItem {
	return &CancelItem{sales: sales, bus: bus, cache: cache}
}

func (uc *CancelItem) Execute(ctx context.Context, saleID, productID string) (*domain.Sale, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !sale.ItemCancellationAllowed() {
		return nil, domain.BusinessRulef("sale %s is %s: items cannot be cancelled", sale.ID, sale.Status)
	}
	if err := sale.CancelItem(productID); err != nil {
		return nil, err
	}
	if err := uc.sales.Update(ctx, sale); err != nil {
		return nil, err
	}

	var cancelled domain.SaleItem
	for _, it := range sale.Items {
		if it.ProductID == productID {
			cancelled = it
			break
		}
	}
	// ItemCancelled first, then SaleModified. Publish failures after a
	// successful persist are surfaced as warnings, not errors.
	publish(ctx, uc.bus, ItemCancelledEvent{Item: SnapshotItem(cancelled)})
	publish(ctx, uc.bus, SaleModifiedEvent{Sale: SnapshotSale(sale)})

	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, sale.ID, string(sale.Status))
	}
	return sale, nil
}

// publish is the shared best-effort emission path for the cancel/update
// flows: the aggregate is already persisted, so a failing bus must not undo
// the primary outcome, but it is never swallowed silently.
func publish(ctx context.Context, bus EventBus, e Event) {
	if err := bus.Publish(ctx, e); err != nil {
		logging.FromCtx(ctx).Warn("event publish failed", "event", e.EventName(), "err", err)
	}
}
