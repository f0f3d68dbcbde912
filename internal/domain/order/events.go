package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is emitted after an order is persisted with status NEW.
// Other contexts (reporting, notifications) consume it; nothing in the core
// depends on its delivery.
type OrderCreatedEvent struct {
	EventID    string
	OrderID    int64
	CustomerID int64
	Total      decimal.Decimal
	Lines      int
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total,
		Lines:      len(o.Items),
		OccurredAt: time.Now().UTC(),
	}
}

// OrderCancelledEvent is emitted after a cancellation has released the
// order's reserved stock.
type OrderCancelledEvent struct {
	EventID    string
	OrderID    int64
	CustomerID int64
	OccurredAt time.Time
}

func (OrderCancelledEvent) EventName() string { return "order.cancelled" }

func NewOrderCancelledEvent(o *Order) OrderCancelledEvent {
	return OrderCancelledEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		OccurredAt: time.Now().UTC(),
	}
}
