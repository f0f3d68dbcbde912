package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/mercato/shopcore/internal/domain/inventory"
)

type InventoryRepository struct {
	mu      sync.RWMutex
	records map[int64]*domain.Record
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		records: make(map[int64]*domain.Record),
	}
}

func (r *InventoryRepository) Get(ctx context.Context, productID int64) (*domain.Record, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Mutate applies fn to a copy of the product's record under the write
// lock; the copy replaces the stored record only when fn succeeds, so a
// failed mutation leaves stock untouched. Holding the lock across the
// read-check-write makes reservation atomic per product.
func (r *InventoryRepository) Mutate(ctx context.Context, productID int64, fn func(*domain.Record) error) (*domain.Record, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[productID]
	if !ok {
		rec = domain.NewRecord(productID)
	}
	next := cloneRecord(rec)
	if err := fn(next); err != nil {
		return nil, err
	}
	r.records[productID] = next
	return cloneRecord(next), nil
}

func (r *InventoryRepository) FindBelow(ctx context.Context, threshold int) ([]domain.Record, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Record
	for _, rec := range r.records {
		if rec.InStock < threshold {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func cloneRecord(rec *domain.Record) *domain.Record {
	if rec == nil {
		return nil
	}
	clone := *rec
	return &clone
}
