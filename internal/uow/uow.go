// Package uow defines the unit-of-work contract that makes each public
// command atomic: either every read and write inside Transact commits
// together, or none do.
package uow

import "context"

// Runner executes fn as one atomic unit of work. A Transact call made
// while already inside a unit joins the enclosing one instead of opening a
// second, so orchestrating commands can compose component commands.
type Runner interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

// Nop runs fn without any transactional scope. Useful in tests that
// exercise a single repository which is atomic on its own.
type Nop struct{}

func (Nop) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
