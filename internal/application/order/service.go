// Package order implements the order lifecycle: creation with stock
// reservation and price snapshotting, cancellation with compensating
// release, and the order reads.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mercato/shopcore/internal/apperr"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	"github.com/mercato/shopcore/internal/domain/catalog"
	"github.com/mercato/shopcore/internal/domain/customer"
	domorder "github.com/mercato/shopcore/internal/domain/order"
	dompayment "github.com/mercato/shopcore/internal/domain/payment"
	"github.com/mercato/shopcore/internal/domain/outbox"
	"github.com/mercato/shopcore/internal/observability"
	"github.com/mercato/shopcore/internal/pkg/logging"
	"github.com/mercato/shopcore/internal/uow"
)

// ItemRequest is one requested line of a new order.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

type Service struct {
	orders    domorder.Repository
	customers customer.Repository
	products  catalog.Repository
	payments  dompayment.Repository
	ledger    *appinv.Service
	runner    uow.Runner
	publisher outbox.Publisher
	metrics   *observability.Metrics
}

func NewService(
	orders domorder.Repository,
	customers customer.Repository,
	products catalog.Repository,
	payments dompayment.Repository,
	ledger *appinv.Service,
	runner uow.Runner,
	publisher outbox.Publisher,
	metrics *observability.Metrics,
) *Service {
	if runner == nil {
		runner = uow.Nop{}
	}
	return &Service{
		orders:    orders,
		customers: customers,
		products:  products,
		payments:  payments,
		ledger:    ledger,
		runner:    runner,
		publisher: publisher,
		metrics:   metrics,
	}
}

// CreateOrder reserves stock for every requested line, snapshots unit
// prices, and persists the order with status NEW. The whole command is one
// atomic unit: when a later line fails validation or reservation, stock
// already reserved for earlier lines is released again and nothing is
// persisted.
func (s *Service) CreateOrder(ctx context.Context, customerID int64, items []ItemRequest) (_ *domorder.Order, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCommand("order.create", start, err) }()

	ctx, span := observability.Tracer().Start(ctx, "OrderLifecycle.CreateOrder",
		trace.WithAttributes(attribute.Int64("order.customer_id", customerID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	logger := logging.FromContext(ctx).With(zap.String("component", "order_lifecycle"))

	if customerID <= 0 {
		return nil, apperr.Validation("customerId must be positive")
	}
	if len(items) == 0 {
		return nil, apperr.Validation("items cannot be empty")
	}

	var created *domorder.Order
	err = s.runner.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.customers.FindByID(ctx, customerID); err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				return apperr.NotFound("customer not found with id: %d", customerID)
			}
			return fmt.Errorf("order: resolve customer: %w", err)
		}

		ord, derr := domorder.New(customerID)
		if derr != nil {
			return apperr.Validation("customerId must be positive")
		}

		// Lines reserved so far, released again when a later line fails.
		reserved := make([]ItemRequest, 0, len(items))
		rollback := func() {
			for i := len(reserved) - 1; i >= 0; i-- {
				if rerr := s.ledger.Release(ctx, reserved[i].ProductID, reserved[i].Quantity); rerr != nil {
					logger.Error("reservation_rollback_failed",
						zap.Int64("product_id", reserved[i].ProductID),
						zap.Error(rerr),
					)
				}
			}
		}

		for _, req := range items {
			item, err := s.buildItem(ctx, ord, req)
			if err != nil {
				rollback()
				return err
			}
			reserved = append(reserved, req)
			ord.AddItem(item)
		}

		if err := s.orders.Insert(ctx, ord); err != nil {
			rollback()
			return fmt.Errorf("order: insert: %w", err)
		}
		created = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", created.ID))
	logger.Info("order_created",
		zap.Int64("order_id", created.ID),
		zap.Int64("customer_id", created.CustomerID),
		zap.String("total", created.Total.StringFixed(2)),
		zap.Int("lines", len(created.Items)),
	)
	s.publish(ctx, domorder.NewOrderCreatedEvent(created))
	return created, nil
}

// buildItem validates one requested line, reserves its stock and snapshots
// the product's current price.
func (s *Service) buildItem(ctx context.Context, ord *domorder.Order, req ItemRequest) (domorder.Item, error) {
	if req.Quantity <= 0 {
		return domorder.Item{}, apperr.Validation("quantity must be positive for product %d", req.ProductID)
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return domorder.Item{}, apperr.NotFound("product not found with id: %d", req.ProductID)
		}
		return domorder.Item{}, fmt.Errorf("order: resolve product: %w", err)
	}
	if !product.Active {
		return domorder.Item{}, apperr.BusinessRule("product is not active: %s", product.SKU)
	}

	if err := s.ledger.Reserve(ctx, product.ID, req.Quantity); err != nil {
		return domorder.Item{}, err
	}

	item, err := domorder.NewItem(product.ID, req.Quantity, product.Price)
	if err != nil {
		return domorder.Item{}, apperr.Validation("quantity must be positive for product %d", req.ProductID)
	}
	return item, nil
}

// CancelOrder releases every reserved line and marks the order CANCELLED.
// Cancelling a PAID order fails; cancelling an already cancelled order is
// an idempotent no-op.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCommand("order.cancel", start, err) }()

	ctx, span := observability.Tracer().Start(ctx, "OrderLifecycle.CancelOrder",
		trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	logger := logging.FromContext(ctx).With(zap.String("component", "order_lifecycle"))

	if orderID <= 0 {
		return apperr.Validation("orderId must be positive")
	}

	var cancelled *domorder.Order
	err = s.runner.Transact(ctx, func(ctx context.Context) error {
		ord, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, domorder.ErrNotFound) {
				return apperr.NotFound("order not found with id: %d", orderID)
			}
			return fmt.Errorf("order: find: %w", err)
		}

		if ord.Status == domorder.StatusPaid {
			return apperr.BusinessRule("order is already PAID")
		}
		if ord.Status == domorder.StatusCancelled {
			logger.Info("order_already_cancelled", zap.Int64("order_id", orderID))
			return nil
		}

		if ord.HasPayment() {
			p, err := s.payments.FindByOrderID(ctx, orderID)
			if err != nil && !errors.Is(err, dompayment.ErrNotFound) {
				return fmt.Errorf("order: resolve payment: %w", err)
			}
			if err == nil && p.Status == dompayment.StatusPending {
				ord.DetachPayment()
			}
		}

		// Restore exactly what was reserved at creation.
		for _, item := range ord.Items {
			if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := ord.MarkCancelled(); err != nil {
			return apperr.BusinessRule("order %d cannot be cancelled from status %s", orderID, ord.Status)
		}
		if err := s.orders.Update(ctx, ord); err != nil {
			return fmt.Errorf("order: update: %w", err)
		}
		cancelled = ord
		return nil
	})
	if err != nil {
		return err
	}

	if cancelled != nil {
		logger.Info("order_cancelled", zap.Int64("order_id", orderID))
		s.publish(ctx, domorder.NewOrderCancelledEvent(cancelled))
	}
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domorder.Order, error) {
	if id <= 0 {
		return nil, apperr.Validation("orderId must be positive")
	}
	ord, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domorder.ErrNotFound) {
			return nil, apperr.NotFound("order not found with id: %d", id)
		}
		return nil, fmt.Errorf("order: find: %w", err)
	}
	return ord, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*domorder.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("order: list: %w", err)
	}
	return orders, nil
}

func (s *Service) ListByStatus(ctx context.Context, status domorder.Status) ([]*domorder.Order, error) {
	if _, err := domorder.ParseStatus(string(status)); err != nil {
		return nil, apperr.Validation("unknown order status: %s", status)
	}
	orders, err := s.orders.FindByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("order: list by status: %w", err)
	}
	return orders, nil
}

func (s *Service) publish(ctx context.Context, e outbox.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
	}
}
