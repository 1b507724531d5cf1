package usecase

import (
	"context"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

// CancelSale cancels a whole sale, cascading cancellation to every
// non-terminal item.
type CancelSale struct {
	sales SaleStore
	bus   EventBus
	cache SaleCache
}

func NewCancelSale(sales SaleStore, bus EventBus, cache SaleCache) *CancelSale {
	return &CancelSale{sales: sales, bus: bus, cache: cache}
}

func (uc *CancelSale) Execute(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := sale.Cancel(); err != nil {
		return nil, err
	}
	if err := uc.sales.Update(ctx, sale); err != nil {
		return nil, err
	}

	publish(ctx, uc.bus, SaleCancelledEvent{Sale: SnapshotSale(sale)})

	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, sale.ID, string(sale.Status))
	}
	return sale, nil
}
