package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

type SaleLineInput struct {
	ProductID string
	Quantity  int
}

type CreateSaleInput struct {
	CustomerID   string
	CustomerName string
	Branch       string
	Items        []SaleLineInput
}

// CreateSale builds a sale directly from catalog products, bypassing the
// cart path (back office, phone orders).
type CreateSale struct {
	sales   SaleStore
	catalog ProductCatalog
	bus     EventBus
	rules   domain.DiscountRules
}

func NewCreateSale(sales SaleStore, catalog ProductCatalog, bus EventBus, rules domain.DiscountRules) *CreateSale {
	return &CreateSale{sales: sales, catalog: catalog, bus: bus, rules: rules}
}

func (uc *CreateSale) Execute(ctx context.Context, in CreateSaleInput) (*domain.Sale, error) {
	if len(in.Items) == 0 {
		return nil, domain.BusinessRulef("a sale needs at least one item")
	}

	products, err := uc.lookup(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sale := &domain.Sale{
		ID:           uuid.NewString(),
		SaleNumber:   domain.NewSaleNumber(now),
		CustomerID:   in.CustomerID,
		CustomerName: in.CustomerName,
		SaleDate:     now,
		Branch:       in.Branch,
		Status:       domain.SalePending,
	}
	for _, line := range in.Items {
		p := products[line.ProductID]
		item, err := buildSaleItem(sale.ID, p.ID, p.Title, p.Price, line.Quantity, uc.rules)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	sale.RecalculateTotal()

	if err := uc.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	publish(ctx, uc.bus, SaleCreatedEvent{Sale: SnapshotSale(sale)})
	return sale, nil
}

// lookup resolves every referenced product, failing with NotFound when the
// catalog misses one.
func (uc *CreateSale) lookup(ctx context.Context, items []SaleLineInput) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := uc.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, it := range items {
		if _, ok := byID[it.ProductID]; !ok {
			return nil, domain.NotFoundf("product %s does not exist", it.ProductID)
		}
	}
	return byID, nil
}
