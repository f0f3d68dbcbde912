package inventory

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("inventory: record not found")
	ErrInvalidQuantity   = errors.New("inventory: quantity must be greater than zero")
	ErrNegativeQuantity  = errors.New("inventory: quantity must be zero or greater")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// Record is the single source of truth for stock-on-hand of one product.
// It is keyed 1:1 with the product and is created lazily with zero stock
// the first time a ledger operation touches the product.
type Record struct {
	ProductID int64
	InStock   int
	UpdatedAt time.Time
}

func NewRecord(productID int64) *Record {
	return &Record{
		ProductID: productID,
		InStock:   0,
		UpdatedAt: time.Now().UTC(),
	}
}

// Reserve decrements stock, failing without mutation when fewer than qty
// units are on hand. InStock never goes negative.
func (r *Record) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > r.InStock {
		return ErrInsufficientStock
	}
	r.InStock -= qty
	r.touch()
	return nil
}

// Release returns previously reserved units. There is no upper bound.
func (r *Record) Release(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	r.InStock += qty
	r.touch()
	return nil
}

// Set overwrites the on-hand count with an exact non-negative value.
func (r *Record) Set(qty int) error {
	if qty < 0 {
		return ErrNegativeQuantity
	}
	r.InStock = qty
	r.touch()
	return nil
}

func (r *Record) touch() {
	r.UpdatedAt = time.Now().UTC()
}
