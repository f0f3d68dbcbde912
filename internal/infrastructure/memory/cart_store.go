package memory

import (
	"context"
	"sync"

	domain "github.com/mercato/shopcore/internal/domain/cart"
)

// CartStore holds one cart per customer in process memory. Carts appear
// on first access and stay until cleared; the store never expires them.
type CartStore struct {
	mu    sync.RWMutex
	lines map[int64][]domain.Line
}

func NewCartStore() *CartStore {
	return &CartStore{
		lines: make(map[int64][]domain.Line),
	}
}

func (s *CartStore) Get(ctx context.Context, customerID int64) (*domain.Cart, error) {
	_ = ctx
	if customerID <= 0 {
		return nil, domain.ErrInvalidCustomer
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Restore(customerID, s.lines[customerID]), nil
}

func (s *CartStore) Save(ctx context.Context, c *domain.Cart) error {
	_ = ctx
	if c == nil || c.CustomerID <= 0 {
		return domain.ErrInvalidCustomer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines[c.CustomerID] = c.Lines()
	return nil
}
