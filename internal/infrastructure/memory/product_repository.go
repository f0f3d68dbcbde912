package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/mercato/shopcore/internal/domain/catalog"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	bySKU    map[string]int64
	nextID   int64
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]*domain.Product),
		bySKU:    make(map[string]int64),
	}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.SKU == "" {
		return fmt.Errorf("product repository: sku is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySKU[p.SKU]; exists {
		return domain.ErrDuplicateSKU
	}

	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = p.Clone()
	r.bySKU[p.SKU] = p.ID
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == 0 {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.products[p.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if prev.SKU != p.SKU {
		if _, taken := r.bySKU[p.SKU]; taken {
			return domain.ErrDuplicateSKU
		}
		delete(r.bySKU, prev.SKU)
		r.bySKU[p.SKU] = p.ID
	}
	r.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySKU[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.products[id].Clone(), nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
