// Package checkout composes cart, order lifecycle and payment processor
// into the customer-facing buy-now command.
package checkout

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mercato/shopcore/internal/apperr"
	appcart "github.com/mercato/shopcore/internal/application/cart"
	apporder "github.com/mercato/shopcore/internal/application/order"
	apppayment "github.com/mercato/shopcore/internal/application/payment"
	domorder "github.com/mercato/shopcore/internal/domain/order"
	dompayment "github.com/mercato/shopcore/internal/domain/payment"
	"github.com/mercato/shopcore/internal/observability"
	"github.com/mercato/shopcore/internal/pkg/logging"
	"github.com/mercato/shopcore/internal/uow"
)

type Service struct {
	carts    *appcart.Service
	orders   *apporder.Service
	payments *apppayment.Service
	runner   uow.Runner
	metrics  *observability.Metrics
}

func NewService(
	carts *appcart.Service,
	orders *apporder.Service,
	payments *apppayment.Service,
	runner uow.Runner,
	metrics *observability.Metrics,
) *Service {
	if runner == nil {
		runner = uow.Nop{}
	}
	return &Service{
		carts:    carts,
		orders:   orders,
		payments: payments,
		runner:   runner,
		metrics:  metrics,
	}
}

// Checkout converts the customer's cart into an order and settles payment
// synchronously. An empty cart fails with no side effects; any failure in
// order creation or payment leaves the cart untouched. The cart is cleared
// once both steps succeed, whether the payment was approved or declined: a
// declined payment still yields a cleared cart and a NEW order the
// customer can revisit.
func (s *Service) Checkout(ctx context.Context, customerID int64, method dompayment.Method) (_ *domorder.Order, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCommand("checkout", start, err) }()

	ctx, span := observability.Tracer().Start(ctx, "Checkout.Checkout",
		trace.WithAttributes(
			attribute.Int64("customer.id", customerID),
			attribute.String("payment.method", string(method)),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	logger := logging.FromContext(ctx).With(zap.String("component", "checkout"))

	var placed *domorder.Order
	err = s.runner.Transact(ctx, func(ctx context.Context) error {
		crt, err := s.carts.Get(ctx, customerID)
		if err != nil {
			return err
		}
		if crt.IsEmpty() {
			return apperr.Validation("cart is empty")
		}

		// Snapshot cart lines in their staged order.
		lines := crt.Lines()
		items := make([]apporder.ItemRequest, 0, len(lines))
		for _, l := range lines {
			items = append(items, apporder.ItemRequest{ProductID: l.ProductID, Quantity: l.Quantity})
		}

		ord, err := s.orders.CreateOrder(ctx, customerID, items)
		if err != nil {
			return err
		}

		p, err := s.payments.ProcessPayment(ctx, ord.ID, method)
		if err != nil {
			return err
		}

		// Both steps succeeded; the cart is cleared even on a declined
		// settlement.
		if err := s.carts.Clear(ctx, customerID); err != nil {
			return err
		}

		// Re-read so the returned order reflects the settlement outcome.
		placed, err = s.orders.GetOrder(ctx, ord.ID)
		if err != nil {
			return err
		}

		logger.Info("checkout_completed",
			zap.Int64("customer_id", customerID),
			zap.Int64("order_id", ord.ID),
			zap.String("order_status", string(placed.Status)),
			zap.String("payment_status", string(p.Status)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", placed.ID),
		attribute.String("order.status", string(placed.Status)),
	)
	return placed, nil
}
