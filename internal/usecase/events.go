package usecase

import (
	"encoding/json"
	"time"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
)

// Event names double as routing keys on the sale.events exchange.
const (
	EventSaleCreated   = "sale.created"
	EventSaleModified  = "sale.modified"
	EventSaleCancelled = "sale.cancelled"
	EventItemCancelled = "saleitem.cancelled"
)

// Event is a snapshot value describing one committed state change. Payloads
// are copied out of the aggregates at emission time, so mutating a sale
// afterwards never alters a delivered event.
type Event interface {
	EventName() string
}

type SaleItemSnapshot struct {
	ID          string `json:"id"`
	SaleID      string `json:"saleId"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
	Status      string `json:"status"`
}

type SaleSnapshot struct {
	ID           string             `json:"id"`
	SaleNumber   string             `json:"saleNumber"`
	CustomerID   string             `json:"customerId"`
	CustomerName string             `json:"customerName"`
	SaleDate     time.Time          `json:"saleDate"`
	Branch       string             `json:"branch"`
	Items        []SaleItemSnapshot `json:"items"`
	TotalValue   string             `json:"totalValue"`
	Status       string             `json:"status"`
}

func SnapshotItem(it domain.SaleItem) SaleItemSnapshot {
	return SaleItemSnapshot{
		ID:          it.ID,
		SaleID:      it.SaleID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice.String(),
		Discount:    it.Discount.String(),
		Total:       it.Total.String(),
		Status:      string(it.Status),
	}
}

func SnapshotSale(s *domain.Sale) SaleSnapshot {
	items := make([]SaleItemSnapshot, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SnapshotItem(it))
	}
	return SaleSnapshot{
		ID:           s.ID,
		SaleNumber:   s.SaleNumber,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		SaleDate:     s.SaleDate,
		Branch:       s.Branch,
		Items:        items,
		TotalValue:   s.TotalValue.String(),
		Status:       string(s.Status),
	}
}

type SaleCreatedEvent struct {
	Sale SaleSnapshot `json:"sale"`
}

func (SaleCreatedEvent) EventName() string { return EventSaleCreated }

type SaleModifiedEvent struct {
	Sale SaleSnapshot `json:"sale"`
}

func (SaleModifiedEvent) EventName() string { return EventSaleModified }

type SaleCancelledEvent struct {
	Sale SaleSnapshot `json:"sale"`
}

func (SaleCancelledEvent) EventName() string { return EventSaleCancelled }

type ItemCancelledEvent struct {
	Item SaleItemSnapshot `json:"item"`
}

func (ItemCancelledEvent) EventName() string { return EventItemCancelled }

// envelope is the wire form written to the outbox and onto the broker.
type envelope struct {
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    Event     `json:"payload"`
}

// EncodeEvent serializes an event with its envelope.
func EncodeEvent(e Event) ([]byte, error) {
	return json.Marshal(envelope{
		Name:       e.EventName(),
		OccurredAt: time.Now().UTC(),
		Payload:    e,
	})
}

// Messages consumed from external systems.

// PaymentConfirmedMsg arrives on RabbitMQ when the payment side settles a
// pending sale.
type PaymentConfirmedMsg struct {
	SaleID    string `json:"saleId"`
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"` // "APPROVED" or "DECLINED"
}

// ShipmentStatusMsg arrives on Kafka from the logistics side.
type ShipmentStatusMsg struct {
	SaleID     string `json:"saleId"`
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"` // "SHIPPED" or "DELIVERED"
}
