package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// Runner is the in-memory unit of work: a store-wide mutex that serializes
// commands. Services roll partial work back through compensating calls,
// and since those run while the lock is held, no caller ever observes an
// intermediate state. Nested Transact calls join the enclosing unit.
type Runner struct {
	mu sync.Mutex
}

func NewRunner() *Runner { return &Runner{} }

func (r *Runner) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}
