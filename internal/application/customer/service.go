// Package customer exposes the thin registration and lookup commands for
// the customer directory the order core references.
package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mercato/shopcore/internal/apperr"
	domcustomer "github.com/mercato/shopcore/internal/domain/customer"
)

type Service struct {
	customers domcustomer.Repository
}

func NewService(customers domcustomer.Repository) *Service {
	return &Service{customers: customers}
}

func (s *Service) Register(ctx context.Context, email, name string) (*domcustomer.Customer, error) {
	c, err := domcustomer.New(email, name)
	if errors.Is(err, domcustomer.ErrBlankEmail) {
		return nil, apperr.Validation("email must not be blank")
	}
	if errors.Is(err, domcustomer.ErrBlankName) {
		return nil, apperr.Validation("name must not be blank")
	}
	if err != nil {
		return nil, err
	}
	if err := s.customers.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("customer: register: %w", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domcustomer.Customer, error) {
	if id <= 0 {
		return nil, apperr.Validation("customerId must be a positive number")
	}
	c, err := s.customers.FindByID(ctx, id)
	if errors.Is(err, domcustomer.ErrNotFound) {
		return nil, apperr.NotFound("customer not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("customer: get: %w", err)
	}
	return c, nil
}
