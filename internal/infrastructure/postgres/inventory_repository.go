package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domain "github.com/mercato/shopcore/internal/domain/inventory"
)

type InventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Get(ctx context.Context, productID int64) (*domain.Record, error) {
	rec := domain.Record{ProductID: productID}
	err := r.db.querier(ctx).QueryRow(ctx,
		`SELECT in_stock, updated_at FROM inventory WHERE product_id = $1`,
		productID,
	).Scan(&rec.InStock, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("inventory repository: get: %w", err)
	}
	return &rec, nil
}

// Mutate serializes concurrent writers on the same product with a row
// lock. It must run inside a unit of work; the ledger always wraps its
// write operations in one.
func (r *InventoryRepository) Mutate(ctx context.Context, productID int64, fn func(*domain.Record) error) (*domain.Record, error) {
	q := r.db.querier(ctx)

	// Lazily create the zero record so the row lock below has a row.
	if _, err := q.Exec(ctx,
		`INSERT INTO inventory (product_id, in_stock, updated_at)
		 VALUES ($1, 0, now())
		 ON CONFLICT (product_id) DO NOTHING`,
		productID,
	); err != nil {
		return nil, fmt.Errorf("inventory repository: ensure record: %w", err)
	}

	rec := domain.Record{ProductID: productID}
	if err := q.QueryRow(ctx,
		`SELECT in_stock, updated_at FROM inventory WHERE product_id = $1 FOR UPDATE`,
		productID,
	).Scan(&rec.InStock, &rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("inventory repository: lock record: %w", err)
	}

	if err := fn(&rec); err != nil {
		return nil, err
	}

	if _, err := q.Exec(ctx,
		`UPDATE inventory SET in_stock = $2, updated_at = $3 WHERE product_id = $1`,
		productID, rec.InStock, rec.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("inventory repository: update: %w", err)
	}
	return &rec, nil
}

func (r *InventoryRepository) FindBelow(ctx context.Context, threshold int) ([]domain.Record, error) {
	rows, err := r.db.querier(ctx).Query(ctx,
		`SELECT product_id, in_stock, updated_at FROM inventory
		 WHERE in_stock < $1 ORDER BY product_id`,
		threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("inventory repository: find below: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ProductID, &rec.InStock, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("inventory repository: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
