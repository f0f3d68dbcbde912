package order

import "context"

type Repository interface {
	// Insert persists a new order and assigns its ID.
	Insert(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindAll(ctx context.Context) ([]*Order, error)
	FindByStatus(ctx context.Context, status Status) ([]*Order, error)
}
