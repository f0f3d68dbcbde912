package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/mercato/shopcore/internal/domain/payment"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[int64]*domain.Payment
	byOrder  map[int64]int64
	nextID   int64
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make(map[int64]*domain.Payment),
		byOrder:  make(map[int64]int64),
	}
}

// Insert enforces the one-payment-per-order invariant through the byOrder
// index, mirroring the unique order_id column of the durable schema.
func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	_ = ctx
	if p == nil || p.OrderID == 0 {
		return fmt.Errorf("payment repository: order id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byOrder[p.OrderID]; exists {
		return domain.ErrAlreadyExists
	}

	r.nextID++
	p.ID = r.nextID
	r.payments[p.ID] = p.Clone()
	r.byOrder[p.OrderID] = p.ID
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	_ = ctx
	if p == nil || p.ID == 0 {
		return fmt.Errorf("payment repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.ID]; !exists {
		return domain.ErrNotFound
	}
	r.payments[p.ID] = p.Clone()
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byOrder, p.OrderID)
	delete(r.payments, id)
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}
