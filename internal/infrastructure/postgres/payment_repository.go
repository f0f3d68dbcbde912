package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domain "github.com/mercato/shopcore/internal/domain/payment"
)

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Insert relies on the unique index on order_id to enforce the
// one-payment-per-order invariant at the store.
func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	err := r.db.querier(ctx).QueryRow(ctx,
		`INSERT INTO payments (order_id, method, status, ts)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		p.OrderID, string(p.Method), string(p.Status), p.Timestamp,
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("payment repository: insert: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	tag, err := r.db.querier(ctx).Exec(ctx,
		`UPDATE payments SET method = $2, status = $3, ts = $4 WHERE id = $1`,
		p.ID, string(p.Method), string(p.Status), p.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("payment repository: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.querier(ctx).Exec(ctx,
		`DELETE FROM payments WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("payment repository: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	return r.findOne(ctx, `WHERE order_id = $1`, orderID)
}

func (r *PaymentRepository) findOne(ctx context.Context, where string, arg any) (*domain.Payment, error) {
	var (
		p      domain.Payment
		method string
		status string
	)
	err := r.db.querier(ctx).QueryRow(ctx,
		`SELECT id, order_id, method, status, ts FROM payments `+where, arg,
	).Scan(&p.ID, &p.OrderID, &method, &status, &p.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payment repository: find: %w", err)
	}
	p.Method = domain.Method(method)
	p.Status = domain.Status(status)
	return &p, nil
}
