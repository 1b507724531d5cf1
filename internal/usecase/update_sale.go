package usecase

import (
	"context"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

// UpdateSale replaces the line items of an early-stage sale with a fresh
// catalog snapshot. Sales past CONFIRMED are immutable.
type UpdateSale struct {
	sales   SaleStore
	catalog ProductCatalog
	bus     EventBus
	rules   domain.DiscountRules
}

func NewUpdateSale(sales SaleStore, catalog ProductCatalog, bus EventBus, rules domain.DiscountRules) *UpdateSale {
	return &UpdateSale{sales: sales, catalog: catalog, bus: bus, rules: rules}
}

func (uc *UpdateSale) Execute(ctx context.Context, saleID string, items []SaleLineInput) (*domain.Sale, error) {
	if len(items) == 0 {
		return nil, domain.BusinessRulef("a sale needs at least one item")
	}

	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	switch sale.Status {
	case domain.SalePending, domain.SaleConfirmed:
		// still mutable
	case domain.SaleCompleted, domain.SaleShipped, domain.SaleDelivered, domain.SaleCancelled:
		return nil, domain.BusinessRulef("sale %s is %s and cannot be modified", sale.ID, sale.Status)
	default:
		return nil, domain.Validationf("unknown sale status %q", sale.Status)
	}

	lookup := CreateSale{catalog: uc.catalog}
	products, err := lookup.lookup(ctx, items)
	if err != nil {
		return nil, err
	}

	rebuilt := make([]domain.SaleItem, 0, len(items))
	for _, line := range items {
		p := products[line.ProductID]
		item, err := buildSaleItem(sale.ID, p.ID, p.Title, p.Price, line.Quantity, uc.rules)
		if err != nil {
			return nil, err
		}
		rebuilt = append(rebuilt, item)
	}
	sale.Items = rebuilt
	sale.RecalculateTotal()

	if err := uc.sales.Update(ctx, sale); err != nil {
		return nil, err
	}
	publish(ctx, uc.bus, SaleModifiedEvent{Sale: SnapshotSale(sale)})
	return sale, nil
}
