package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mercato/shopcore/internal/apperr"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	apporder "github.com/mercato/shopcore/internal/application/order"
	domcatalog "github.com/mercato/shopcore/internal/domain/catalog"
	domcustomer "github.com/mercato/shopcore/internal/domain/customer"
	domorder "github.com/mercato/shopcore/internal/domain/order"
	dompayment "github.com/mercato/shopcore/internal/domain/payment"
	"github.com/mercato/shopcore/internal/infrastructure/memory"
)

type fixture struct {
	svc      *Service
	orders   *apporder.Service
	ledger   *appinv.Service
	repo     *memory.OrderRepository
	payments *memory.PaymentRepository
}

// newFixture wires a payment service over in-memory stores with a fixed
// settlement outcome and one product (stock 10, price 10.00).
func newFixture(t *testing.T, approve bool) (*fixture, int64) {
	t.Helper()
	return newFixtureWith(t, DeciderFunc(func(context.Context, *domorder.Order, dompayment.Method) (bool, error) {
		return approve, nil
	}))
}

func newFixtureWith(t *testing.T, decider Decider) (*fixture, int64) {
	t.Helper()
	ctx := context.Background()

	runner := memory.NewRunner()
	orderRepo := memory.NewOrderRepository()
	paymentRepo := memory.NewPaymentRepository()
	productRepo := memory.NewProductRepository()
	customerRepo := memory.NewCustomerRepository()
	ledger := appinv.NewService(memory.NewInventoryRepository(), runner, nil)

	c, _ := domcustomer.New("bob@example.com", "Bob")
	if err := customerRepo.Insert(ctx, c); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	p, _ := domcatalog.NewProduct("SKU-1", "Widget", "", decimal.RequireFromString("10.00"), true)
	if err := productRepo.Insert(ctx, p); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	if err := ledger.SetStock(ctx, p.ID, 10); err != nil {
		t.Fatalf("set stock: %v", err)
	}

	orders := apporder.NewService(orderRepo, customerRepo, productRepo, paymentRepo, ledger, runner, nil, nil)
	svc := NewService(orderRepo, paymentRepo, ledger, decider, runner, nil, nil)

	return &fixture{svc: svc, orders: orders, ledger: ledger, repo: orderRepo, payments: paymentRepo}, p.ID
}

func (f *fixture) placeOrder(t *testing.T, productID int64, qty int) *domorder.Order {
	t.Helper()
	ord, err := f.orders.CreateOrder(context.Background(), 1, []apporder.ItemRequest{
		{ProductID: productID, Quantity: qty},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return ord
}

func TestApprovedPaymentMarksOrderPaid(t *testing.T) {
	ctx := context.Background()
	f, productID := newFixture(t, true)
	ord := f.placeOrder(t, productID, 3)

	p, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodCard)
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}

	if p.Status != dompayment.StatusApproved {
		t.Errorf("payment status = %s, want APPROVED", p.Status)
	}
	reread, _ := f.repo.FindByID(ctx, ord.ID)
	if reread.Status != domorder.StatusPaid {
		t.Errorf("order status = %s, want PAID", reread.Status)
	}
	if reread.PaymentID != p.ID {
		t.Errorf("order payment id = %d, want %d", reread.PaymentID, p.ID)
	}

	// An approved settlement keeps the reservation.
	stock, _ := f.ledger.GetStock(ctx, productID)
	if stock != 7 {
		t.Errorf("stock = %d, want 7", stock)
	}
}

func TestDeclinedPaymentReleasesStockAndKeepsOrderNew(t *testing.T) {
	ctx := context.Background()
	f, productID := newFixture(t, false)
	ord := f.placeOrder(t, productID, 3)

	p, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodSwish)
	if err != nil {
		t.Fatalf("ProcessPayment: %v (a decline is not an error)", err)
	}

	if p.Status != dompayment.StatusDeclined {
		t.Errorf("payment status = %s, want DECLINED", p.Status)
	}
	reread, _ := f.repo.FindByID(ctx, ord.ID)
	if reread.Status != domorder.StatusNew {
		t.Errorf("order status = %s, want NEW", reread.Status)
	}
	stock, _ := f.ledger.GetStock(ctx, productID)
	if stock != 10 {
		t.Errorf("stock = %d after decline, want 10", stock)
	}
}

func TestSecondPaymentForOrderFails(t *testing.T) {
	ctx := context.Background()
	f, productID := newFixture(t, false)
	ord := f.placeOrder(t, productID, 1)

	if _, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodCard); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	_, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodCard)
	if !apperr.IsBusinessRule(err) {
		t.Errorf("second payment: err = %v, want business rule", err)
	}
}

func TestSettlementErrorLeavesNoPaymentBehind(t *testing.T) {
	ctx := context.Background()
	fail := true
	f, productID := newFixtureWith(t, DeciderFunc(func(context.Context, *domorder.Order, dompayment.Method) (bool, error) {
		if fail {
			return false, errors.New("settlement gateway unreachable")
		}
		return true, nil
	}))
	ord := f.placeOrder(t, productID, 2)

	if _, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodCard); err == nil {
		t.Fatal("ProcessPayment succeeded, want settlement error")
	}

	// The pending row must be rolled back, not left to block a retry.
	if _, err := f.payments.FindByOrderID(ctx, ord.ID); !errors.Is(err, dompayment.ErrNotFound) {
		t.Fatalf("payment after failed settlement: err = %v, want not found", err)
	}
	reread, _ := f.repo.FindByID(ctx, ord.ID)
	if reread.Status != domorder.StatusNew {
		t.Errorf("order status = %s after failed settlement, want NEW", reread.Status)
	}

	fail = false
	p, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodCard)
	if err != nil {
		t.Fatalf("retry after settlement error: %v", err)
	}
	if p.Status != dompayment.StatusApproved {
		t.Errorf("retry payment status = %s, want APPROVED", p.Status)
	}
}

func TestPaymentValidation(t *testing.T) {
	ctx := context.Background()
	f, productID := newFixture(t, true)
	ord := f.placeOrder(t, productID, 1)

	cancelled := f.placeOrder(t, productID, 1)
	stored, _ := f.repo.FindByID(ctx, cancelled.ID)
	if err := stored.MarkCancelled(); err != nil {
		t.Fatalf("mark cancelled: %v", err)
	}
	if err := f.repo.Update(ctx, stored); err != nil {
		t.Fatalf("update order: %v", err)
	}

	if _, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodCard); err != nil {
		t.Fatalf("pay order: %v", err)
	}

	tests := []struct {
		name     string
		orderID  int64
		method   dompayment.Method
		wantKind apperr.Kind
	}{
		{"non-positive order id", 0, dompayment.MethodCard, apperr.KindValidation},
		{"unknown method", ord.ID, "BITCOIN", apperr.KindValidation},
		{"unknown order", 999, dompayment.MethodCard, apperr.KindNotFound},
		{"already paid", ord.ID, dompayment.MethodCard, apperr.KindValidation},
		{"cancelled order", cancelled.ID, dompayment.MethodCard, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ProcessPayment(ctx, tt.orderID, tt.method)
			if apperr.KindOf(err) != tt.wantKind {
				t.Errorf("err = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestGetPayment(t *testing.T) {
	ctx := context.Background()
	f, productID := newFixture(t, true)
	ord := f.placeOrder(t, productID, 1)

	p, err := f.svc.ProcessPayment(ctx, ord.ID, dompayment.MethodInvoice)
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	got, err := f.svc.GetPayment(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if got.OrderID != ord.ID || got.Method != dompayment.MethodInvoice {
		t.Errorf("payment = %+v", got)
	}

	if _, err := f.svc.GetPayment(ctx, 999); !apperr.IsNotFound(err) {
		t.Errorf("missing payment: err = %v, want not found", err)
	}
}

func TestRandomDeciderExtremes(t *testing.T) {
	ctx := context.Background()
	always := NewRandomDecider(1.0)
	never := NewRandomDecider(0.0)

	for i := 0; i < 50; i++ {
		if ok, err := always.Decide(ctx, nil, dompayment.MethodCard); err != nil || !ok {
			t.Fatalf("rate 1.0 declined (ok=%v, err=%v)", ok, err)
		}
		if ok, err := never.Decide(ctx, nil, dompayment.MethodCard); err != nil || ok {
			t.Fatalf("rate 0.0 approved (ok=%v, err=%v)", ok, err)
		}
	}
}
