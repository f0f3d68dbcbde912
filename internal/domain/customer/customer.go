package customer

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("customer: not found")
	ErrBlankEmail = errors.New("customer: email must not be blank")
	ErrBlankName  = errors.New("customer: name must not be blank")
)

// Customer is external to the order core; orders reference it by id.
type Customer struct {
	ID    int64
	Email string
	Name  string
}

func New(email, name string) (*Customer, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrBlankEmail
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankName
	}
	return &Customer{Email: email, Name: name}, nil
}

type Repository interface {
	// Insert persists a new customer and assigns its ID.
	Insert(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id int64) (*Customer, error)
}
