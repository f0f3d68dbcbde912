package catalog

import "context"

type Repository interface {
	// Insert persists a new product and assigns its ID. Fails with
	// ErrDuplicateSKU when the sku is taken.
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
}
