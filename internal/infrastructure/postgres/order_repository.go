package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domain "github.com/mercato/shopcore/internal/domain/order"
)

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	q := r.db.querier(ctx)

	err := q.QueryRow(ctx,
		`INSERT INTO orders (customer_id, status, total, payment_id, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, 0), $5)
		 RETURNING id`,
		o.CustomerID, string(o.Status), o.Total.StringFixed(2), o.PaymentID, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("order repository: insert: %w", err)
	}

	for _, item := range o.Items {
		if _, err := q.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, qty, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.ID, item.ProductID, item.Quantity,
			item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2),
		); err != nil {
			return fmt.Errorf("order repository: insert item: %w", err)
		}
	}
	return nil
}

// Update persists status and payment association. Items are immutable
// after creation, so they are never rewritten.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	tag, err := r.db.querier(ctx).Exec(ctx,
		`UPDATE orders SET status = $2, total = $3, payment_id = NULLIF($4, 0)
		 WHERE id = $1`,
		o.ID, string(o.Status), o.Total.StringFixed(2), o.PaymentID,
	)
	if err != nil {
		return fmt.Errorf("order repository: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	q := r.db.querier(ctx)

	var (
		o      domain.Order
		status string
		total  string
		payID  *int64
	)
	err := q.QueryRow(ctx,
		`SELECT id, customer_id, status, total::text, payment_id, created_at
		 FROM orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.CustomerID, &status, &total, &payID, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order repository: find: %w", err)
	}
	o.Status = domain.Status(status)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order repository: parse total: %w", err)
	}
	if payID != nil {
		o.PaymentID = *payID
	}

	if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.findWhere(ctx, ``, nil)
}

func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return r.findWhere(ctx, `WHERE status = $1`, []any{string(status)})
}

func (r *OrderRepository) findWhere(ctx context.Context, where string, args []any) ([]*domain.Order, error) {
	rows, err := r.db.querier(ctx).Query(ctx,
		`SELECT id, customer_id, status, total::text, payment_id, created_at
		 FROM orders `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("order repository: list: %w", err)
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		var (
			o      domain.Order
			status string
			total  string
			payID  *int64
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &status, &total, &payID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("order repository: scan: %w", err)
		}
		o.Status = domain.Status(status)
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("order repository: parse total: %w", err)
		}
		if payID != nil {
			o.PaymentID = *payID
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range out {
		if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepository) itemsFor(ctx context.Context, orderID int64) ([]domain.Item, error) {
	rows, err := r.db.querier(ctx).Query(ctx,
		`SELECT product_id, qty, unit_price::text, line_total::text
		 FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("order repository: items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var (
			item      domain.Item
			unitPrice string
			lineTotal string
		)
		if err := rows.Scan(&item.ProductID, &item.Quantity, &unitPrice, &lineTotal); err != nil {
			return nil, fmt.Errorf("order repository: scan item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("order repository: parse unit price: %w", err)
		}
		if item.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
			return nil, fmt.Errorf("order repository: parse line total: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
