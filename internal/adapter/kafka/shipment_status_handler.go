package kafka

import (
	"context"
	"errors"

	"github.com/halls510/developerstore-sales-api-sub001/internal/domain"
	"github.com/halls510/developerstore-sales-api-sub001/internal/usecase"
)

// ShipmentStatusHandler moves sales along the shipping leg of the state
// machine from logistics events. Out-of-order or replayed events surface as
// business-rule errors and are dropped rather than retried.
type ShipmentStatusHandler struct {
	Sales usecase.SaleStore
	Bus   usecase.EventBus
	Cache usecase.SaleCache // optional
}

func NewShipmentStatusHandler(sales usecase.SaleStore, bus usecase.EventBus, cache usecase.SaleCache) *ShipmentStatusHandler {
	return &ShipmentStatusHandler{Sales: sales, Bus: bus, Cache: cache}
}

func (h *ShipmentStatusHandler) Handle(ctx context.Context, ev usecase.ShipmentStatusMsg) error {
	sale, err := h.Sales.GetByID(ctx, ev.SaleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil // not ours; drop
		}
		return err
	}

	switch ev.Status {
	case "SHIPPED":
		// a SHIPPED event from logistics is also the completion signal:
		// confirmed sales move through COMPLETED on their way out the door
		if sale.Status == domain.SaleConfirmed {
			if err := sale.Complete(); err != nil {
				return err
			}
		}
		err = sale.MarkShipped()
	case "DELIVERED":
		err = sale.MarkDelivered()
	default:
		return nil // unknown status; drop
	}
	if err != nil {
		// wrong order or replay; the sale is not in the expected state
		if errors.Is(err, domain.ErrBusinessRule) {
			return nil
		}
		return err
	}

	if err := h.Sales.Update(ctx, sale); err != nil {
		return err
	}
	if err := h.Bus.Publish(ctx, usecase.SaleModifiedEvent{Sale: usecase.SnapshotSale(sale)}); err != nil {
		return err
	}

	if h.Cache != nil {
		_ = h.Cache.SetStatus(ctx, sale.ID, string(sale.Status))
	}
	return nil
}
