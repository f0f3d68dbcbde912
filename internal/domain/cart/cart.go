package cart

import "errors"

var (
	ErrInvalidCustomer = errors.New("cart: customer id must be positive")
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
)

// Line is one (product, quantity) pair staged for checkout.
type Line struct {
	ProductID int64
	Quantity  int
}

// Cart stages lines for a single customer prior to order creation. Lines
// keep insertion order; a line whose quantity drops to zero or below is
// removed, not zeroed. No stock check here is authoritative.
type Cart struct {
	CustomerID int64
	lines      []Line
}

func New(customerID int64) (*Cart, error) {
	if customerID <= 0 {
		return nil, ErrInvalidCustomer
	}
	return &Cart{CustomerID: customerID}, nil
}

// Restore rebuilds a cart from persisted lines, preserving their order.
func Restore(customerID int64, lines []Line) *Cart {
	return &Cart{CustomerID: customerID, lines: append([]Line(nil), lines...)}
}

// Add merges qty into an existing line or appends a new one.
func (c *Cart) Add(productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity += qty
			return nil
		}
	}
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: qty})
	return nil
}

// Remove subtracts qty from the product's line, dropping the line entirely
// when its quantity reaches zero or below. Removing a product that is not
// in the cart is a no-op.
func (c *Cart) Remove(productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity -= qty
			if c.lines[i].Quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			return nil
		}
	}
	return nil
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Quantity returns the staged quantity for a product, 0 when absent.
func (c *Cart) Quantity(productID int64) int {
	for _, l := range c.lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Lines returns a copy of the staged lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}
