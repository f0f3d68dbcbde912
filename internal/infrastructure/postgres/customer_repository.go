package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domain "github.com/mercato/shopcore/internal/domain/customer"
)

type CustomerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Insert(ctx context.Context, c *domain.Customer) error {
	err := r.db.querier(ctx).QueryRow(ctx,
		`INSERT INTO customers (email, name) VALUES ($1, $2) RETURNING id`,
		c.Email, c.Name,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("customer repository: insert: %w", err)
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.querier(ctx).QueryRow(ctx,
		`SELECT id, email, name FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Email, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customer repository: find: %w", err)
	}
	return &c, nil
}
