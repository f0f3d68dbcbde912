package cart

import "context"

// Store keeps one cart per customer. Carts are created on first access and
// live until explicitly cleared; the store never garbage-collects them.
// Concurrent mutation of the same customer's cart is out of contract
// (single active session per customer); different customers are fully
// independent.
type Store interface {
	// Get returns the customer's cart, creating an empty one on first
	// access.
	Get(ctx context.Context, customerID int64) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}
