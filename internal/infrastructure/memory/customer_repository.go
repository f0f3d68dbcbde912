package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/mercato/shopcore/internal/domain/customer"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[int64]*domain.Customer
	nextID    int64
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[int64]*domain.Customer),
	}
}

func (r *CustomerRepository) Insert(ctx context.Context, c *domain.Customer) error {
	_ = ctx
	if c == nil {
		return fmt.Errorf("customer repository: customer is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	clone := *c
	r.customers[c.ID] = &clone
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}
