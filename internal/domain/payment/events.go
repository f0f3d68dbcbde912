package payment

import (
	"time"

	"github.com/google/uuid"
)

// PaymentSettledEvent is emitted after a settlement decision has been
// applied to both the payment and its order.
type PaymentSettledEvent struct {
	EventID    string
	PaymentID  int64
	OrderID    int64
	Method     Method
	Status     Status
	OccurredAt time.Time
}

func (PaymentSettledEvent) EventName() string { return "payment.settled" }

func NewPaymentSettledEvent(p *Payment) PaymentSettledEvent {
	return PaymentSettledEvent{
		EventID:    uuid.NewString(),
		PaymentID:  p.ID,
		OrderID:    p.OrderID,
		Method:     p.Method,
		Status:     p.Status,
		OccurredAt: time.Now().UTC(),
	}
}
