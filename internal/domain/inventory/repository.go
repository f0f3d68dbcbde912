package inventory

import "context"

// Repository persists stock records. Mutate is the only write path for
// reserve/release/set: implementations must apply fn to the current record
// (creating a zero record when absent) as one atomic step per product, so
// concurrent reservations on the same product can never jointly oversell.
type Repository interface {
	// Get returns the record for productID, or ErrNotFound when no
	// record exists. It never creates one.
	Get(ctx context.Context, productID int64) (*Record, error)

	// Mutate loads or lazily creates the record for productID, applies fn
	// under per-product serialization, and persists the result. When fn
	// returns an error nothing is persisted and the error is returned.
	Mutate(ctx context.Context, productID int64, fn func(*Record) error) (*Record, error)

	// FindBelow returns all records with InStock strictly below threshold.
	FindBelow(ctx context.Context, threshold int) ([]Record, error)
}
