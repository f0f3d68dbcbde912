// Package payment implements the payment state machine and drives order
// status transitions on approval or decline.
package payment

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
	domorder "github.com/mercato/shopcore/internal/domain/order"
	dompayment "github.com/mercato/shopcore/internal/domain/payment"
	"github.com/mercato/shopcore/internal/domain/outbox"
	"github.com/mercato/shopcore/internal/observability"
	"github.com/mercato/shopcore/internal/pkg/logging"
	"github.com/mercato/shopcore/internal/uow"
)

type Service struct {
	orders    domorder.Repository
	payments  dompayment.Repository
	ledger    *appinv.Service
	decider   Decider
	runner    uow.Runner
	publisher outbox.Publisher
	metrics   *observability.Metrics
}

func NewService(
	orders domorder.Repository,
	payments dompayment.Repository,
	ledger *appinv.Service,
	decider Decider,
	runner uow.Runner,
	publisher outbox.Publisher,
	metrics *observability.Metrics,
) *Service {
	if runner == nil {
		runner = uow.Nop{}
	}
	if decider == nil {
		decider = NewRandomDecider(0.9)
	}
	return &Service{
		orders:    orders,
		payments:  payments,
		ledger:    ledger,
		decider:   decider,
		runner:    runner,
		publisher: publisher,
		metrics:   metrics,
	}
}

// ProcessPayment settles one payment attempt for an order. Validation never
// mutates state; once the PENDING payment exists, the decision is applied
// to payment and order in the same unit of work. An approval marks the
// order PAID; a decline releases the stock reserved at creation and leaves
// the order NEW for retry or cancellation. A declined settlement is a
// successful command, not an error.
func (s *Service) ProcessPayment(ctx context.Context, orderID int64, method dompayment.Method) (_ *dompayment.Payment, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveCommand("payment.process", start, err) }()

	ctx, span := observability.Tracer().Start(ctx, "PaymentProcessor.ProcessPayment",
		trace.WithAttributes(
			attribute.Int64("order.id", orderID),
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

	logger := logging.FromContext(ctx).With(zap.String("component", "payment_processor"))

	if orderID <= 0 {
		return nil, apperr.Validation("orderId must be positive")
	}
	if _, merr := dompayment.ParseMethod(string(method)); merr != nil {
		return nil, apperr.Validation("unknown payment method: %s", method)
	}

	var settled *dompayment.Payment
	err = s.runner.Transact(ctx, func(ctx context.Context) error {
		ord, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, domorder.ErrNotFound) {
				return apperr.NotFound("order not found with id: %d", orderID)
			}
			return fmt.Errorf("payment: find order: %w", err)
		}

		// Pure validation up to here; nothing has been written.
		if ord.Status == domorder.StatusPaid {
			return apperr.Validation("order is already PAID")
		}
		if ord.Status == domorder.StatusCancelled {
			return apperr.Validation("cannot pay a CANCELLED order")
		}

		if _, err := s.payments.FindByOrderID(ctx, orderID); err == nil {
			return apperr.BusinessRule("payment already exists for order %d", orderID)
		} else if !errors.Is(err, dompayment.ErrNotFound) {
			return fmt.Errorf("payment: find by order: %w", err)
		}

		p := dompayment.New(orderID, method)
		if err := s.payments.Insert(ctx, p); err != nil {
			if errors.Is(err, dompayment.ErrAlreadyExists) {
				return apperr.BusinessRule("payment already exists for order %d", orderID)
			}
			return fmt.Errorf("payment: insert: %w", err)
		}

		approved, err := s.decider.Decide(ctx, ord, method)
		if err != nil {
			// No decision was made: take the PENDING row back so a retry
			// is not blocked by the one-payment-per-order rule.
			if derr := s.payments.Delete(ctx, p.ID); derr != nil {
				logger.Error("pending_payment_rollback_failed",
					zap.Int64("payment_id", p.ID),
					zap.Error(derr),
				)
			}
			return fmt.Errorf("payment: settlement: %w", err)
		}

		if approved {
			p.Approve()
			if err := ord.MarkPaid(); err != nil {
				return apperr.BusinessRule("order %d cannot be paid from status %s", orderID, ord.Status)
			}
		} else {
			p.Decline()
			// The order did not consummate: compensate the reservation
			// made at creation time. The order stays NEW.
			for _, item := range ord.Items {
				if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := s.payments.Update(ctx, p); err != nil {
			return fmt.Errorf("payment: update: %w", err)
		}
		ord.PaymentID = p.ID
		if err := s.orders.Update(ctx, ord); err != nil {
			return fmt.Errorf("payment: update order: %w", err)
		}
		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.status", string(settled.Status)))
	logger.Info("payment_settled",
		zap.Int64("order_id", orderID),
		zap.Int64("payment_id", settled.ID),
		zap.String("status", string(settled.Status)),
	)
	s.publish(ctx, dompayment.NewPaymentSettledEvent(settled))
	return settled, nil
}

// GetPayment returns one payment by id.
func (s *Service) GetPayment(ctx context.Context, id int64) (*dompayment.Payment, error) {
	if id <= 0 {
		return nil, apperr.Validation("paymentId must be positive")
	}
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dompayment.ErrNotFound) {
			return nil, apperr.NotFound("payment not found with id: %d", id)
		}
		return nil, fmt.Errorf("payment: find: %w", err)
	}
	return p, nil
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
