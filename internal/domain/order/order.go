package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrInvalidCustomer   = errors.New("order: customer id must be positive")
	ErrInvalidQuantity   = errors.New("order: quantity must be greater than zero")
	ErrInvalidTransition = errors.New("order: invalid status transition")
	ErrUnknownStatus     = errors.New("order: unknown status")
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// validNext encodes the lifecycle: NEW is the only non-terminal status.
// A declined payment keeps the order in NEW, so NEW -> NEW never appears
// here; it is simply the absence of a transition.
var validNext = map[Status]map[Status]bool{
	StatusNew:       {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusPaid, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// Item is a line on an order. UnitPrice is a snapshot of the product price
// at order-creation time and never changes afterwards.
type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// NewItem builds a line and computes LineTotal = round(unitPrice * qty, 2).
func NewItem(productID int64, quantity int, unitPrice decimal.Decimal) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	return Item{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}, nil
}

// Order owns its items by value. The payment relation is held as an id to
// avoid a back-pointer cycle; zero means no payment.
type Order struct {
	ID         int64
	CustomerID int64
	Status     Status
	Items      []Item
	Total      decimal.Decimal
	PaymentID  int64
	CreatedAt  time.Time
}

func New(customerID int64) (*Order, error) {
	if customerID <= 0 {
		return nil, ErrInvalidCustomer
	}
	return &Order{
		CustomerID: customerID,
		Status:     StatusNew,
		Total:      decimal.Zero,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (o *Order) AddItem(item Item) {
	o.Items = append(o.Items, item)
	o.RecalcTotal()
}

// RecalcTotal derives Total from the current items; it is never set directly.
func (o *Order) RecalcTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal)
	}
	o.Total = total.Round(2)
}

func (o *Order) MarkPaid() error {
	if !CanTransition(o.Status, StatusPaid) {
		return ErrInvalidTransition
	}
	o.Status = StatusPaid
	return nil
}

func (o *Order) MarkCancelled() error {
	if !CanTransition(o.Status, StatusCancelled) {
		return ErrInvalidTransition
	}
	o.Status = StatusCancelled
	return nil
}

func (o *Order) HasPayment() bool { return o.PaymentID != 0 }

// DetachPayment drops the payment association (used when cancelling an
// order whose payment is still pending).
func (o *Order) DetachPayment() { o.PaymentID = 0 }

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	return &clone
}
