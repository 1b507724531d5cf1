package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSale(status SaleStatus) *Sale {
	return &Sale{
		ID:           "sale-1",
		SaleNumber:   NewSaleNumber(time.Now()),
		CustomerID:   "u-1",
		CustomerName: "Alice",
		SaleDate:     time.Now().UTC(),
		Branch:       "web",
		Status:       status,
		Items: []SaleItem{
			{
				ID: "i-1", SaleID: "sale-1", ProductID: "p1", ProductName: "one",
				Quantity: 5, UnitPrice: MustMoney(100), Discount: MustMoney(50),
				Total: MustMoney(450), Status: ItemActive,
			},
			{
				ID: "i-2", SaleID: "sale-1", ProductID: "p2", ProductName: "two",
				Quantity: 2, UnitPrice: MustMoney(48), Discount: Zero,
				Total: MustMoney(96), Status: ItemActive,
			},
		},
		TotalValue: MustMoney(546),
	}
}

func TestNewSaleNumberFormat(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	n := NewSaleNumber(at)

	assert.True(t, strings.HasPrefix(n, "S-20260829-"))
	assert.Len(t, n, len("S-20260829-")+8)
}

func TestSaleCancelCascades(t *testing.T) {
	s := testSale(SalePending)

	require.NoError(t, s.Cancel())
	assert.Equal(t, SaleCancelled, s.Status)
	for _, it := range s.Items {
		assert.Equal(t, ItemCancelled, it.Status)
	}
	assert.True(t, s.TotalValue.IsZero())

	// cancelling twice is a business rule violation
	err := s.Cancel()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusinessRule))
}

func TestSaleCancelKeepsReturnedItems(t *testing.T) {
	s := testSale(SaleConfirmed)
	s.Items[1].Status = ItemReturned

	require.NoError(t, s.Cancel())
	assert.Equal(t, ItemCancelled, s.Items[0].Status)
	assert.Equal(t, ItemReturned, s.Items[1].Status)
}

func TestSaleCancelRejectedForTerminalStatuses(t *testing.T) {
	for _, st := range []SaleStatus{SaleCompleted, SaleShipped, SaleDelivered} {
		s := testSale(st)
		err := s.Cancel()
		require.Error(t, err, "status %s", st)
		assert.True(t, errors.Is(err, ErrBusinessRule))
		assert.Equal(t, st, s.Status)
	}
}

func TestCancelItemRecalculatesTotal(t *testing.T) {
	s := testSale(SalePending)

	require.NoError(t, s.CancelItem("p1"))
	assert.Equal(t, ItemCancelled, s.Items[0].Status)
	assert.Equal(t, ItemActive, s.Items[1].Status)
	assert.Equal(t, "96.00", s.TotalValue.String())

	// line stays in Items for audit
	assert.Len(t, s.Items, 2)
}

func TestCancelItemDoubleCancelFails(t *testing.T) {
	s := testSale(SalePending)
	require.NoError(t, s.CancelItem("p1"))

	err := s.CancelItem("p1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusinessRule))
}

func TestCancelItemUnknownProduct(t *testing.T) {
	s := testSale(SalePending)

	err := s.CancelItem("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCancelItemBlockedOnceCompleted(t *testing.T) {
	for _, st := range []SaleStatus{SaleCompleted, SaleShipped, SaleDelivered} {
		s := testSale(st)
		err := s.CancelItem("p1")
		require.Error(t, err, "status %s", st)
		assert.True(t, errors.Is(err, ErrBusinessRule))
	}
}

func TestRecalculateTotalCountsNonCancelledLines(t *testing.T) {
	s := testSale(SalePending)
	s.Items[0].Status = ItemReturned
	s.Items[1].Status = ItemOutOfStock

	s.RecalculateTotal()
	assert.Equal(t, "546.00", s.TotalValue.String())

	s.Items[0].Status = ItemCancelled
	s.RecalculateTotal()
	assert.Equal(t, "96.00", s.TotalValue.String())
}

func TestSaleLifecycleTransitions(t *testing.T) {
	s := testSale(SalePending)

	require.NoError(t, s.Confirm())
	assert.Equal(t, SaleConfirmed, s.Status)

	require.NoError(t, s.Complete())
	assert.Equal(t, SaleCompleted, s.Status)

	require.NoError(t, s.MarkShipped())
	assert.Equal(t, SaleShipped, s.Status)
	for _, it := range s.Items {
		assert.Equal(t, ItemShipped, it.Status)
	}

	require.NoError(t, s.MarkDelivered())
	assert.Equal(t, SaleDelivered, s.Status)
	for _, it := range s.Items {
		assert.Equal(t, ItemDelivered, it.Status)
	}
}

func TestSaleTransitionRejectsSkips(t *testing.T) {
	s := testSale(SalePending)

	// cannot ship before completion
	err := s.MarkShipped()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusinessRule))

	// cannot confirm twice
	require.NoError(t, s.Confirm())
	assert.True(t, errors.Is(s.Confirm(), ErrBusinessRule))
}

func TestShippingSkipsCancelledLines(t *testing.T) {
	s := testSale(SaleConfirmed)
	require.NoError(t, s.CancelItem("p1"))

	require.NoError(t, s.Complete())
	require.NoError(t, s.MarkShipped())
	assert.Equal(t, ItemCancelled, s.Items[0].Status)
	assert.Equal(t, ItemShipped, s.Items[1].Status)
}

func TestParseSaleStatus(t *testing.T) {
	st, err := ParseSaleStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, SaleShipped, st)

	_, err = ParseSaleStatus("???")
	assert.True(t, errors.Is(err, ErrValidation))

	is, err := ParseSaleItemStatus("OUT_OF_STOCK")
	require.NoError(t, err)
	assert.Equal(t, ItemOutOfStock, is)

	_, err = ParseSaleItemStatus("???")
	assert.True(t, errors.Is(err, ErrValidation))
}
