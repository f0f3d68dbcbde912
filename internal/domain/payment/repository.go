package payment

import "context"

type Repository interface {
	// Insert persists a new payment and assigns its ID. It fails with
	// ErrAlreadyExists when a payment for the same order is present,
	// enforcing the one-payment-per-order invariant at the store.
	Insert(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error

	// Delete removes a payment. It is the compensation path for a
	// settlement that never produced a decision; a settled payment is
	// never deleted.
	Delete(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID int64) (*Payment, error)
}
