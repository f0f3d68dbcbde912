package payment

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("payment: not found")
	ErrUnknownMethod = errors.New("payment: unknown method")
	ErrAlreadyExists = errors.New("payment: payment already exists for order")
)

type Method string

const (
	MethodCard    Method = "CARD"
	MethodSwish   Method = "SWISH"
	MethodInvoice Method = "INVOICE"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodCard, MethodSwish, MethodInvoice:
		return Method(s), nil
	}
	return "", ErrUnknownMethod
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
)

// Payment records one settlement attempt. OrderID is unique across
// payments: an order gets at most one, ever.
type Payment struct {
	ID        int64
	OrderID   int64
	Method    Method
	Status    Status
	Timestamp time.Time
}

func New(orderID int64, method Method) *Payment {
	return &Payment{
		OrderID:   orderID,
		Method:    method,
		Status:    StatusPending,
		Timestamp: time.Now().UTC(),
	}
}

func (p *Payment) Approve() {
	p.Status = StatusApproved
	p.touch()
}

func (p *Payment) Decline() {
	p.Status = StatusDeclined
	p.touch()
}

func (p *Payment) touch() {
	p.Timestamp = time.Now().UTC()
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
