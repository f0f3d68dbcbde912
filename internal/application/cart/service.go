// Package cart manages the per-customer staging area for order lines.
// Stock checks here are advisory only; the ledger's reservation at order
// creation is authoritative.
package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mercato/shopcore/internal/apperr"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	domcart "github.com/mercato/shopcore/internal/domain/cart"
	"github.com/mercato/shopcore/internal/domain/catalog"
	"github.com/mercato/shopcore/internal/pkg/logging"
)

type Service struct {
	store    domcart.Store
	products catalog.Repository
	ledger   *appinv.Service
}

func NewService(store domcart.Store, products catalog.Repository, ledger *appinv.Service) *Service {
	return &Service{store: store, products: products, ledger: ledger}
}

// Get returns the customer's cart, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, customerID int64) (*domcart.Cart, error) {
	if customerID <= 0 {
		return nil, apperr.Validation("customerId must be positive")
	}
	c, err := s.store.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("cart: get: %w", err)
	}
	return c, nil
}

// Add stages qty units of a product. The product must exist and be active,
// and the staged quantity may not exceed the current stock; this check is a
// courtesy for the session, reservation happens at order creation.
func (s *Service) Add(ctx context.Context, customerID, productID int64, qty int) error {
	if qty <= 0 {
		return apperr.Validation("qty must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return apperr.NotFound("product not found with id: %d", productID)
		}
		return fmt.Errorf("cart: resolve product: %w", err)
	}
	if !product.Active {
		return apperr.BusinessRule("product is not active: %s", product.SKU)
	}

	c, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}

	stock, err := s.ledger.GetStock(ctx, productID)
	if err != nil {
		return err
	}
	inCart := c.Quantity(productID)
	if inCart+qty > stock {
		return apperr.Validation("not enough stock: in cart %d, stock %d", inCart, stock)
	}

	if err := c.Add(productID, qty); err != nil {
		return apperr.Validation("qty must be positive")
	}
	if err := s.store.Save(ctx, c); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}

	logging.FromContext(ctx).Info("cart_item_added",
		zap.Int64("customer_id", customerID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", qty),
	)
	return nil
}

// Remove subtracts qty units of a product; the line disappears when it
// reaches zero. Removing something not in the cart is a no-op.
func (s *Service) Remove(ctx context.Context, customerID, productID int64, qty int) error {
	if qty <= 0 {
		return apperr.Validation("qty must be positive")
	}
	c, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if err := c.Remove(productID, qty); err != nil {
		return apperr.Validation("qty must be positive")
	}
	if err := s.store.Save(ctx, c); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// Clear removes every line from the customer's cart.
func (s *Service) Clear(ctx context.Context, customerID int64) error {
	c, err := s.Get(ctx, customerID)
	if err != nil {
		return err
	}
	c.Clear()
	if err := s.store.Save(ctx, c); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// IsEmpty reports whether the customer's cart has no lines.
func (s *Service) IsEmpty(ctx context.Context, customerID int64) (bool, error) {
	c, err := s.Get(ctx, customerID)
	if err != nil {
		return false, err
	}
	return c.IsEmpty(), nil
}
