package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("catalog: product not found")
	ErrDuplicateSKU  = errors.New("catalog: product already exists with sku")
	ErrBlankSKU      = errors.New("catalog: sku must not be blank")
	ErrBlankName     = errors.New("catalog: name must not be blank")
	ErrNegativePrice = errors.New("catalog: price must be zero or greater")
)

// Product lives outside the order/inventory core and is referenced by id.
// Only active products may be ordered. Categories are held as ids; the
// association is a plain many-to-many table in the store, never an
// embedded back-pointer.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
	CategoryIDs []int64
	CreatedAt   time.Time
}

func NewProduct(sku, name, description string, price decimal.Decimal, active bool) (*Product, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, ErrBlankSKU
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankName
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	return &Product{
		SKU:         sku,
		Name:        name,
		Description: description,
		Price:       price.Round(2),
		Active:      active,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.CategoryIDs = append([]int64(nil), p.CategoryIDs...)
	return &clone
}

// Category is a flat label; products reference it by id.
type Category struct {
	ID   int64
	Name string
}
