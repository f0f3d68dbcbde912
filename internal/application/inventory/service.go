// Package inventory implements the stock ledger: the only writer of
// on-hand counts. Reserve, release and set are atomic per product.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mercato/shopcore/internal/apperr"
	dominv "github.com/mercato/shopcore/internal/domain/inventory"
	"github.com/mercato/shopcore/internal/observability"
	"github.com/mercato/shopcore/internal/pkg/logging"
	"github.com/mercato/shopcore/internal/uow"
)

type Service struct {
	repo    dominv.Repository
	runner  uow.Runner
	metrics *observability.Metrics
}

func NewService(repo dominv.Repository, runner uow.Runner, metrics *observability.Metrics) *Service {
	if runner == nil {
		runner = uow.Nop{}
	}
	return &Service{repo: repo, runner: runner, metrics: metrics}
}

// GetStock returns the on-hand count for a product, 0 when no record
// exists. It never creates a record.
func (s *Service) GetStock(ctx context.Context, productID int64) (int, error) {
	if err := requirePositiveID(productID); err != nil {
		return 0, err
	}
	rec, err := s.repo.Get(ctx, productID)
	if errors.Is(err, dominv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("inventory: get stock: %w", err)
	}
	return rec.InStock, nil
}

// Reserve decrements available stock for an order. The read-check-write is
// one atomic step per product: concurrent reservations can never jointly
// oversell stock that was available to only one of them.
func (s *Service) Reserve(ctx context.Context, productID int64, qty int) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCommand("inventory.reserve", start, err) }()
	if err = requirePositiveID(productID); err != nil {
		return err
	}
	if qty <= 0 {
		return apperr.Validation("quantity must be positive")
	}

	logger := logging.FromContext(ctx).With(zap.String("component", "inventory_ledger"))

	return s.runner.Transact(ctx, func(ctx context.Context) error {
		var available int
		_, err := s.repo.Mutate(ctx, productID, func(rec *dominv.Record) error {
			available = rec.InStock
			return rec.Reserve(qty)
		})
		if errors.Is(err, dominv.ErrInsufficientStock) {
			return apperr.BusinessRule("not enough stock for product %d: available %d, requested %d",
				productID, available, qty)
		}
		if err != nil {
			return fmt.Errorf("inventory: reserve: %w", err)
		}
		logger.Info("stock_reserved",
			zap.Int64("product_id", productID),
			zap.Int("quantity", qty),
		)
		return nil
	})
}

// Release returns previously reserved units to the product's stock.
func (s *Service) Release(ctx context.Context, productID int64, qty int) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCommand("inventory.release", start, err) }()
	if err = requirePositiveID(productID); err != nil {
		return err
	}
	if qty <= 0 {
		return apperr.Validation("quantity must be positive")
	}

	logger := logging.FromContext(ctx).With(zap.String("component", "inventory_ledger"))

	return s.runner.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Mutate(ctx, productID, func(rec *dominv.Record) error {
			return rec.Release(qty)
		}); err != nil {
			return fmt.Errorf("inventory: release: %w", err)
		}
		logger.Info("stock_released",
			zap.Int64("product_id", productID),
			zap.Int("quantity", qty),
		)
		return nil
	})
}

// SetStock overwrites the on-hand count, creating the record when absent.
func (s *Service) SetStock(ctx context.Context, productID int64, qty int) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCommand("inventory.set", start, err) }()
	if err = requirePositiveID(productID); err != nil {
		return err
	}
	if qty < 0 {
		return apperr.Validation("quantity must be >= 0")
	}

	return s.runner.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Mutate(ctx, productID, func(rec *dominv.Record) error {
			return rec.Set(qty)
		}); err != nil {
			return fmt.Errorf("inventory: set stock: %w", err)
		}
		return nil
	})
}

// FindLowStock returns all records with fewer than threshold units on hand.
func (s *Service) FindLowStock(ctx context.Context, threshold int) ([]dominv.Record, error) {
	if threshold < 0 {
		return nil, apperr.Validation("threshold must be >= 0")
	}
	recs, err := s.repo.FindBelow(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("inventory: find low stock: %w", err)
	}
	return recs, nil
}

func requirePositiveID(productID int64) error {
	if productID <= 0 {
		return apperr.Validation("productId must be a positive number")
	}
	return nil
}
