package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domain "github.com/mercato/shopcore/internal/domain/catalog"
)

type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	q := r.db.querier(ctx)

	err := q.QueryRow(ctx,
		`INSERT INTO products (sku, name, description, price, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		p.SKU, p.Name, p.Description, p.Price.StringFixed(2), p.Active, p.CreatedAt,
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateSKU
	}
	if err != nil {
		return fmt.Errorf("product repository: insert: %w", err)
	}

	// Categories live in a plain association table, not as back-pointers.
	for _, cid := range p.CategoryIDs {
		if _, err := q.Exec(ctx,
			`INSERT INTO product_category (product_id, category_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			p.ID, cid,
		); err != nil {
			return fmt.Errorf("product repository: link category: %w", err)
		}
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	tag, err := r.db.querier(ctx).Exec(ctx,
		`UPDATE products SET sku = $2, name = $3, description = $4, price = $5, active = $6
		 WHERE id = $1`,
		p.ID, p.SKU, p.Name, p.Description, p.Price.StringFixed(2), p.Active,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateSKU
	}
	if err != nil {
		return fmt.Errorf("product repository: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.findOne(ctx, `WHERE sku = $1`, sku)
}

func (r *ProductRepository) findOne(ctx context.Context, where string, arg any) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := r.db.querier(ctx).QueryRow(ctx,
		`SELECT id, sku, name, description, price::text, active, created_at
		 FROM products `+where, arg,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &price, &p.Active, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("product repository: find: %w", err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product repository: parse price: %w", err)
	}
	if p.CategoryIDs, err = r.categoriesFor(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.querier(ctx).Query(ctx,
		`SELECT id, sku, name, description, price::text, active, created_at
		 FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("product repository: list: %w", err)
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &price, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("product repository: scan: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product repository: parse price: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range out {
		if p.CategoryIDs, err = r.categoriesFor(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *ProductRepository) categoriesFor(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := r.db.querier(ctx).Query(ctx,
		`SELECT category_id FROM product_category WHERE product_id = $1 ORDER BY category_id`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("product repository: categories: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var cid int64
		if err := rows.Scan(&cid); err != nil {
			return nil, fmt.Errorf("product repository: scan category: %w", err)
		}
		out = append(out, cid)
	}
	return out, rows.Err()
}
