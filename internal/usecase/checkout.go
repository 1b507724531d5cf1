package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/logging"
)

// Checkout converts a cart into a sale: validates the cart against the
// discount rules, snapshots every line into a sale item, and retires the
// cart. Sale insert, cart deletion and the SaleCreated outbox append happen
// in one transaction behind CheckoutStore.
type Checkout struct {
	carts    CartStore
	sales    SaleStore
	checkout CheckoutStore
	idem     IdempotencyStore
	rules    domain.DiscountRules
	branch   string
}

func NewCheckout(carts CartStore, sales SaleStore, checkout CheckoutStore, idem IdempotencyStore, rules domain.DiscountRules, branch string) *Checkout {
	return &Checkout{carts: carts, sales: sales, checkout: checkout, idem: idem, rules: rules, branch: branch}
}

// Execute runs checkout for cartID. idemKey may be empty; when present,
// repeated calls with the same key return the sale created the first time.
func (uc *Checkout) Execute(ctx context.Context, cartID, idemKey string) (*domain.Sale, error) {
	if idemKey != "" {
		saleID, ok, err := uc.idem.Recall(ctx, "checkout", idemKey)
		switch {
		case err != nil:
			// degrade to a fresh attempt, but leave a trace
			logging.FromCtx(ctx).Warn("checkout: idempotency recall failed", "err", err)
		case ok:
			return uc.sales.GetByID(ctx, saleID)
		}
		ok, err = uc.idem.TryLock(ctx, "checkout", idemKey)
		if err != nil {
			return nil, domain.Dependencyf("idempotency store: %v", err)
		}
		if !ok {
			return nil, domain.Conflictf("checkout with key %s is already in flight", idemKey)
		}
	}

	cart, err := uc.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := uc.rules.ValidateCartForCheckout(cart.Items); err != nil {
		return nil, err
	}

	sale, err := uc.buildSale(cart)
	if err != nil {
		return nil, err
	}

	event, err := EncodeEvent(SaleCreatedEvent{Sale: SnapshotSale(sale)})
	if err != nil {
		return nil, domain.Dependencyf("encode sale.created: %v", err)
	}
	if err := uc.checkout.CreateSaleRetireCart(ctx, sale, cart.ID, event); err != nil {
		return nil, err
	}

	if idemKey != "" {
		if err := uc.idem.Remember(ctx, "checkout", idemKey, sale.ID); err != nil {
			logging.FromCtx(ctx).Warn("checkout: idempotency remember failed", "sale_id", sale.ID, "err", err)
		}
	}
	return sale, nil
}

func (uc *Checkout) buildSale(cart *domain.Cart) (*domain.Sale, error) {
	now := time.Now().UTC()
	sale := &domain.Sale{
		ID:           uuid.NewString(),
		SaleNumber:   domain.NewSaleNumber(now),
		CustomerID:   cart.UserID,
		CustomerName: cart.UserName,
		SaleDate:     now,
		Branch:       uc.branch,
		Status:       domain.SalePending,
	}
	for _, ci := range cart.Items {
		item, err := buildSaleItem(sale.ID, ci.ProductID, ci.ProductName, ci.UnitPrice, ci.Quantity, uc.rules)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	sale.RecalculateTotal()
	return sale, nil
}

// buildSaleItem computes discount and line total for one snapshot line.
// Discount is stored as a line amount (per-unit discount x quantity) so the
// item invariant total == unitPrice*qty - discount holds.
func buildSaleItem(saleID, productID, productName string, unitPrice domain.Money, quantity int, rules domain.DiscountRules) (domain.SaleItem, error) {
	discountedUnit, err := rules.ApplyDiscount(quantity, unitPrice)
	if err != nil {
		return domain.SaleItem{}, err
	}
	perUnit, err := rules.CalculateDiscount(quantity, unitPrice)
	if err != nil {
		return domain.SaleItem{}, err
	}
	return domain.SaleItem{
		ID:          uuid.NewString(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Discount:    perUnit.MulInt(quantity),
		Total:       discountedUnit.MulInt(quantity),
		Status:      domain.ItemActive,
	}, nil
}
