// Package catalog manages products. It lives outside the consistency core
// but owns product creation so initial stock flows through the ledger.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mercato/shopcore/internal/apperr"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	domcatalog "github.com/mercato/shopcore/internal/domain/catalog"
	"github.com/mercato/shopcore/internal/pkg/logging"
	"github.com/mercato/shopcore/internal/uow"
)

type Service struct {
	products domcatalog.Repository
	ledger   *appinv.Service
	runner   uow.Runner
}

func NewService(products domcatalog.Repository, ledger *appinv.Service, runner uow.Runner) *Service {
	if runner == nil {
		runner = uow.Nop{}
	}
	return &Service{products: products, ledger: ledger, runner: runner}
}

type CreateProductInput struct {
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
	InStock     int
	CategoryIDs []int64
}

// CreateProduct registers a product and seeds its initial stock through
// the ledger, as one unit.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*domcatalog.Product, error) {
	if strings.TrimSpace(in.SKU) == "" {
		return nil, apperr.Validation("sku must not be blank")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name must not be blank")
	}
	if !in.Price.IsPositive() {
		return nil, apperr.Validation("price must be greater than zero")
	}
	if in.InStock < 0 {
		return nil, apperr.Validation("in stock must be greater than or equal to zero")
	}

	var created *domcatalog.Product
	err := s.runner.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.products.FindBySKU(ctx, in.SKU); err == nil {
			return apperr.BusinessRule("product already exists with SKU: %s", in.SKU)
		} else if !errors.Is(err, domcatalog.ErrNotFound) {
			return fmt.Errorf("catalog: find by sku: %w", err)
		}

		p, derr := domcatalog.NewProduct(in.SKU, in.Name, in.Description, in.Price, in.Active)
		if derr != nil {
			return apperr.Validation("%v", derr)
		}
		p.CategoryIDs = append([]int64(nil), in.CategoryIDs...)

		if err := s.products.Insert(ctx, p); err != nil {
			if errors.Is(err, domcatalog.ErrDuplicateSKU) {
				return apperr.BusinessRule("product already exists with SKU: %s", in.SKU)
			}
			return fmt.Errorf("catalog: insert: %w", err)
		}

		if err := s.ledger.SetStock(ctx, p.ID, in.InStock); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("product_created",
		zap.Int64("product_id", created.ID),
		zap.String("sku", created.SKU),
	)
	return created, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domcatalog.Product, error) {
	if id <= 0 {
		return nil, apperr.Validation("productId must be a positive number")
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domcatalog.ErrNotFound) {
			return nil, apperr.NotFound("product not found with id: %d", id)
		}
		return nil, fmt.Errorf("catalog: find: %w", err)
	}
	return p, nil
}

func (s *Service) GetProductBySKU(ctx context.Context, sku string) (*domcatalog.Product, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, apperr.Validation("sku must not be blank")
	}
	p, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, domcatalog.ErrNotFound) {
			return nil, apperr.NotFound("product not found with SKU: %s", sku)
		}
		return nil, fmt.Errorf("catalog: find by sku: %w", err)
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*domcatalog.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return products, nil
}

// SetProductActive toggles orderability of a product.
func (s *Service) SetProductActive(ctx context.Context, id int64, active bool) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	p.Active = active
	if err := s.products.Update(ctx, p); err != nil {
		return fmt.Errorf("catalog: update: %w", err)
	}
	return nil
}
