package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SaleStatus string

const (
	SalePending   SaleStatus = "PENDING"
	SaleConfirmed SaleStatus = "CONFIRMED"
	SaleCompleted SaleStatus = "COMPLETED"
	SaleShipped   SaleStatus = "SHIPPED"
	SaleDelivered SaleStatus = "DELIVERED"
	SaleCancelled SaleStatus = "CANCELLED"
)

func ParseSaleStatus(s string) (SaleStatus, error) {
	switch SaleStatus(s) {
	case SalePending, SaleConfirmed, SaleCompleted, SaleShipped, SaleDelivered, SaleCancelled:
		return SaleStatus(s), nil
	default:
		return "", Validationf("unknown sale status %q", s)
	}
}

type SaleItemStatus string

const (
	ItemActive     SaleItemStatus = "ACTIVE"
	ItemCancelled  SaleItemStatus = "CANCELLED"
	ItemReturned   SaleItemStatus = "RETURNED"
	ItemOutOfStock SaleItemStatus = "OUT_OF_STOCK"
	ItemShipped    SaleItemStatus = "SHIPPED"
	ItemDelivered  SaleItemStatus = "DELIVERED"
)

func ParseSaleItemStatus(s string) (SaleItemStatus, error) {
	switch SaleItemStatus(s) {
	case ItemActive, ItemCancelled, ItemReturned, ItemOutOfStock, ItemShipped, ItemDelivered:
		return SaleItemStatus(s), nil
	default:
		return "", Validationf("unknown sale item status %q", s)
	}
}

// SaleItem is one product line inside a sale. Its cancellation lifecycle is
// independent of the parent sale's status. Invariant:
// Total == UnitPrice*Quantity - Discount, never negative.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   Money
	Discount    Money
	Total       Money
	Status      SaleItemStatus
}

// Cancel transitions the item to CANCELLED. Re-cancelling an already
// cancelled or returned item is rejected.
func (i *SaleItem) Cancel() error {
	switch i.Status {
	case ItemCancelled, ItemReturned:
		return BusinessRulef("item %s is already %s", i.ProductID, i.Status)
	case ItemActive, ItemOutOfStock, ItemShipped, ItemDelivered:
		i.Status = ItemCancelled
		return nil
	default:
		return Validationf("unknown sale item status %q", i.Status)
	}
}

// Sale is the immutable-after-creation record of a transaction. Cancelled
// items stay in Items so history is auditable; only their status changes,
// and TotalValue is recomputed over the non-cancelled ones.
type Sale struct {
	ID           string
	SaleNumber   string
	CustomerID   string
	CustomerName string
	SaleDate     time.Time
	Branch       string
	Items        []SaleItem
	TotalValue   Money
	Status       SaleStatus
	Version      int
}

// NewSaleNumber produces a human-readable sale number.
func NewSaleNumber(at time.Time) string {
	return fmt.Sprintf("S-%s-%s", at.UTC().Format("20060102"), uuid.NewString()[:8])
}

func (s *Sale) IsCancelled() bool { return s.Status == SaleCancelled }

// CanBeCancelled reports whether the whole sale may still transition to
// CANCELLED. Completed and in-transit sales may not.
func (s *Sale) CanBeCancelled() bool {
	switch s.Status {
	case SalePending, SaleConfirmed:
		return true
	case SaleCompleted, SaleShipped, SaleDelivered, SaleCancelled:
		return false
	default:
		return false
	}
}

// ItemCancellationAllowed reports whether individual items may still be
// cancelled given the sale's status.
func (s *Sale) ItemCancellationAllowed() bool {
	switch s.Status {
	case SalePending, SaleConfirmed, SaleCancelled:
		return true
	case SaleCompleted, SaleShipped, SaleDelivered:
		return false
	default:
		return false
	}
}

// Cancel sets the sale to CANCELLED and cascades cancellation to every
// non-terminal item. Items keep their own CANCELLED status rather than
// being removed.
func (s *Sale) Cancel() error {
	if s.IsCancelled() {
		return BusinessRulef("sale %s is already cancelled", s.ID)
	}
	if !s.CanBeCancelled() {
		return BusinessRulef("sale %s is %s and cannot be cancelled", s.ID, s.Status)
	}
	s.Status = SaleCancelled
	for i := range s.Items {
		switch s.Items[i].Status {
		case ItemCancelled, ItemReturned:
			// already terminal for cancellation
		default:
			s.Items[i].Status = ItemCancelled
		}
	}
	s.RecalculateTotal()
	return nil
}

// CancelItem cancels one line by product id and recomputes the total.
func (s *Sale) CancelItem(productID string) error {
	if !s.ItemCancellationAllowed() {
		return BusinessRulef("sale %s is %s: items cannot be cancelled", s.ID, s.Status)
	}
	idx := -1
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NotFoundf("product %s is not part of sale %s", productID, s.ID)
	}
	if err := s.Items[idx].Cancel(); err != nil {
		return err
	}
	s.RecalculateTotal()
	return nil
}

// RecalculateTotal recomputes TotalValue from the non-cancelled items.
// Returned and out-of-stock lines still count toward the total.
func (s *Sale) RecalculateTotal() {
	total := Zero
	for i := range s.Items {
		if s.Items[i].Status == ItemCancelled {
			continue
		}
		total = total.Add(s.Items[i].Total)
	}
	s.TotalValue = total
}

// Confirm moves a pending sale to CONFIRMED.
func (s *Sale) Confirm() error {
	return s.transition(SalePending, SaleConfirmed)
}

// Complete moves a confirmed sale to COMPLETED.
func (s *Sale) Complete() error {
	return s.transition(SaleConfirmed, SaleCompleted)
}

// MarkShipped moves a completed sale to SHIPPED and propagates the status
// to the still-active items.
func (s *Sale) MarkShipped() error {
	if err := s.transition(SaleCompleted, SaleShipped); err != nil {
		return err
	}
	s.propagateItemStatus(ItemShipped)
	return nil
}

// MarkDelivered moves a shipped sale to DELIVERED.
func (s *Sale) MarkDelivered() error {
	if err := s.transition(SaleShipped, SaleDelivered); err != nil {
		return err
	}
	s.propagateItemStatus(ItemDelivered)
	return nil
}

func (s *Sale) transition(from, to SaleStatus) error {
	switch s.Status {
	case from:
		s.Status = to
		return nil
	case SalePending, SaleConfirmed, SaleCompleted, SaleShipped, SaleDelivered, SaleCancelled:
		return BusinessRulef("sale %s is %s: cannot transition to %s", s.ID, s.Status, to)
	default:
		return Validationf("unknown sale status %q", s.Status)
	}
}

func (s *Sale) propagateItemStatus(to SaleItemStatus) {
	for i := range s.Items {
		switch s.Items[i].Status {
		case ItemActive, ItemShipped:
			s.Items[i].Status = to
		default:
			// cancelled/returned/out-of-stock lines keep their status
		}
	}
}
