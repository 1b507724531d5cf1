package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

var testCatalogProducts = []domain.Product{
	{ID: "p1", Title: "one", Price: domain.MustMoney(100)},
	{ID: "p2", Title: "two", Price: domain.MustMoney(40)},
	{ID: "p3", Title: "three", Price: domain.MustMoney(48)},
}

func TestCreateSaleFromCatalog(t *testing.T) {
	sales := newFakeSaleStore()
	bus := &fakeBus{}
	uc := NewCreateSale(sales, newFakeCatalog(testCatalogProducts...), bus, domain.DefaultDiscountRules())

	sale, err := uc.Execute(context.Background(), CreateSaleInput{
		CustomerID:   "u-9",
		CustomerName: "Bob",
		Branch:       "backoffice",
		Items: []SaleLineInput{
			{ProductID: "p1", Quantity: 5},
			{ProductID: "p2", Quantity: 12},
			{ProductID: "p3", Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "930.00", sale.TotalValue.String())
	assert.Equal(t, domain.SalePending, sale.Status)
	assert.Equal(t, "backoffice", sale.Branch)
	require.Len(t, sale.Items, 3)
	assert.Equal(t, "one", sale.Items[0].ProductName)

	_, stored := sales.sales[sale.ID]
	assert.True(t, stored)
	assert.Equal(t, []string{EventSaleCreated}, bus.names())
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	sales := newFakeSaleStore()
	bus := &fakeBus{}
	uc := NewCreateSale(sales, newFakeCatalog(testCatalogProducts...), bus, domain.DefaultDiscountRules())

	_, err := uc.Execute(context.Background(), CreateSaleInput{
		CustomerID: "u-9",
		Items:      []SaleLineInput{{ProductID: "ghost", Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, sales.sales)
	assert.Empty(t, bus.events)
}

func TestCreateSaleRequiresItems(t *testing.T) {
	uc := NewCreateSale(newFakeSaleStore(), newFakeCatalog(), &fakeBus{}, domain.DefaultDiscountRules())

	_, err := uc.Execute(context.Background(), CreateSaleInput{CustomerID: "u-9"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBusinessRule))
}

func TestCreateSaleQuantityAboveCap(t *testing.T) {
	uc := NewCreateSale(newFakeSaleStore(), newFakeCatalog(testCatalogProducts...), &fakeBus{}, domain.DefaultDiscountRules())

	_, err := uc.Execute(context.Background(), CreateSaleInput{
		CustomerID: "u-9",
		Items:      []SaleLineInput{{ProductID: "p1", Quantity: 21}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBusinessRule))
}

func TestUpdateSaleReplacesItems(t *testing.T) {
	sales := newFakeSaleStore(pendingSale())
	bus := &fakeBus{}
	uc := NewUpdateSale(sales, newFakeCatalog(testCatalogProducts...), bus, domain.DefaultDiscountRules())

	sale, err := uc.Execute(context.Background(), "sale-1", []SaleLineInput{
		{ProductID: "p2", Quantity: 10},
	})
	require.NoError(t, err)

	require.Len(t, sale.Items, 1)
	assert.Equal(t, "p2", sale.Items[0].ProductID)
	// 10 x 40 at 20% off
	assert.Equal(t, "320.00", sale.TotalValue.String())
	assert.Equal(t, []string{EventSaleModified}, bus.names())
	assert.Equal(t, 1, sales.updates)
}

func TestUpdateSaleRejectsTerminalStatuses(t *testing.T) {
	for _, st := range []domain.SaleStatus{domain.SaleCompleted, domain.SaleShipped, domain.SaleDelivered, domain.SaleCancelled} {
		s := pendingSale()
		s.Status = st
		sales := newFakeSaleStore(s)
		uc := NewUpdateSale(sales, newFakeCatalog(testCatalogProducts...), &fakeBus{}, domain.DefaultDiscountRules())

		_, err := uc.Execute(context.Background(), "sale-1", []SaleLineInput{{ProductID: "p1", Quantity: 1}})
		require.Error(t, err, "status %s", st)
		assert.True(t, errors.Is(err, domain.ErrBusinessRule))
		assert.Equal(t, 0, sales.updates)
	}
}

func TestUpdateSaleVersionConflictPropagates(t *testing.T) {
	sales := newFakeSaleStore(pendingSale())
	sales.failErr = domain.Conflictf("sale sale-1 was modified concurrently")
	uc := NewUpdateSale(sales, newFakeCatalog(testCatalogProducts...), &fakeBus{}, domain.DefaultDiscountRules())

	_, err := uc.Execute(context.Background(), "sale-1", []SaleLineInput{{ProductID: "p1", Quantity: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCartServiceLifecycle(t *testing.T) {
	carts := newFakeCartStore()
	svc := NewCartService(carts, newFakeCatalog(testCatalogProducts...), domain.DefaultDiscountRules())
	ctx := context.Background()

	cart, err := svc.CreateCart(ctx, "u-1", "Alice")
	require.NoError(t, err)

	cart, err = svc.AddItem(ctx, cart.ID, "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, "360.00", cart.TotalPrice.String())

	cart, err = svc.UpdateItem(ctx, cart.ID, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, "200.00", cart.TotalPrice.String())

	cart, err = svc.RemoveItem(ctx, cart.ID, "p1")
	require.NoError(t, err)
	assert.True(t, cart.TotalPrice.IsZero())

	require.NoError(t, svc.DeleteCart(ctx, cart.ID))
	_, err = svc.GetCart(ctx, cart.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCartServiceCancelCart(t *testing.T) {
	cart := domain.NewCart("u-1", "Alice")
	carts := newFakeCartStore(cart)
	svc := NewCartService(carts, newFakeCatalog(testCatalogProducts...), domain.DefaultDiscountRules())
	ctx := context.Background()

	got, err := svc.CancelCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartCancelled, got.Status)
	assert.Equal(t, 1, carts.updates)

	// a cancelled cart stays visible but is closed for mutation
	got, err = svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartCancelled, got.Status)
	_, err = svc.AddItem(ctx, cart.ID, "p1", 1)
	assert.True(t, errors.Is(err, domain.ErrBusinessRule))

	// and cancelling twice is rejected
	_, err = svc.CancelCart(ctx, cart.ID)
	assert.True(t, errors.Is(err, domain.ErrBusinessRule))
}

func TestCartServiceHidesCompletedCarts(t *testing.T) {
	cart := domain.NewCart("u-1", "Alice")
	require.NoError(t, cart.Complete())
	carts := newFakeCartStore(cart)
	svc := NewCartService(carts, newFakeCatalog(), domain.DefaultDiscountRules())

	_, err := svc.GetCart(context.Background(), cart.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = svc.DeleteCart(context.Background(), cart.ID)
	assert.True(t, errors.Is(err, domain.ErrBusinessRule))
}

func TestCartServiceAddUnknownProduct(t *testing.T) {
	cart := domain.NewCart("u-1", "Alice")
	svc := NewCartService(newFakeCartStore(cart), newFakeCatalog(), domain.DefaultDiscountRules())

	_, err := svc.AddItem(context.Background(), cart.ID, "ghost", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
