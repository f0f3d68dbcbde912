package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	appcart "github.com/mercato/shopcore/internal/application/cart"
	appcatalog "github.com/mercato/shopcore/internal/application/catalog"
	appcheckout "github.com/mercato/shopcore/internal/application/checkout"
	appcustomer "github.com/mercato/shopcore/internal/application/customer"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	apporder "github.com/mercato/shopcore/internal/application/order"
	apppayment "github.com/mercato/shopcore/internal/application/payment"
	"github.com/mercato/shopcore/internal/infrastructure/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	runner := memory.NewRunner()
	orders := memory.NewOrderRepository()
	payments := memory.NewPaymentRepository()
	products := memory.NewProductRepository()
	customers := memory.NewCustomerRepository()
	ledger := appinv.NewService(memory.NewInventoryRepository(), runner, nil)

	cartSvc := appcart.NewService(memory.NewCartStore(), products, ledger)
	catalogSvc := appcatalog.NewService(products, ledger, runner)
	customerSvc := appcustomer.NewService(customers)
	orderSvc := apporder.NewService(orders, customers, products, payments, ledger, runner, nil, nil)
	paymentSvc := apppayment.NewService(orders, payments, ledger, apppayment.NewRandomDecider(1.0), runner, nil, nil)
	checkoutSvc := appcheckout.NewService(cartSvc, orderSvc, paymentSvc, runner, nil)

	h := NewHandler(cartSvc, catalogSvc, checkoutSvc, customerSvc, ledger, orderSvc, paymentSvc, zap.NewNop(), nil)
	return h.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/customers", map[string]any{
		"email": "dana@example.com", "name": "Dana",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: status %d: %s", rec.Code, rec.Body.String())
	}
	var cust struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &cust)

	rec = doJSON(t, router, http.MethodPost, "/products", map[string]any{
		"sku": "SKU-1", "name": "Widget", "price": "12.50", "inStock": 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status %d: %s", rec.Code, rec.Body.String())
	}
	var prod struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &prod)

	rec = doJSON(t, router, http.MethodPost, "/customers/1/cart/items", map[string]any{
		"productId": prod.ID, "quantity": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cart add: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/customers/1/checkout", map[string]any{
		"method": "CARD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: status %d: %s", rec.Code, rec.Body.String())
	}
	var ord struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
		Total  string `json:"total"`
	}
	decode(t, rec, &ord)
	if ord.Status != "PAID" {
		t.Errorf("order status = %s, want PAID (decider approves everything)", ord.Status)
	}
	if ord.Total != "37.50" {
		t.Errorf("total = %s, want 37.50", ord.Total)
	}

	rec = doJSON(t, router, http.MethodGet, "/inventory/1", nil)
	var stock struct {
		InStock int `json:"inStock"`
	}
	decode(t, rec, &stock)
	if stock.InStock != 7 {
		t.Errorf("stock = %d, want 7", stock.InStock)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	router := newTestRouter(t)

	// Seed one product so business-rule paths are reachable.
	rec := doJSON(t, router, http.MethodPost, "/products", map[string]any{
		"sku": "SKU-1", "name": "Widget", "price": "5.00", "inStock": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed product: status %d: %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"validation maps to 400", http.MethodPost, "/inventory/1/reserve", map[string]any{"quantity": 0}, http.StatusBadRequest},
		{"not found maps to 404", http.MethodGet, "/orders/999", nil, http.StatusNotFound},
		{"business rule maps to 409", http.MethodPost, "/inventory/1/reserve", map[string]any{"quantity": 5}, http.StatusConflict},
		{"duplicate sku maps to 409", http.MethodPost, "/products", map[string]any{"sku": "SKU-1", "name": "Dup", "price": "1.00"}, http.StatusConflict},
		{"bad path id maps to 400", http.MethodGet, "/orders/abc", nil, http.StatusBadRequest},
		{"unknown method maps to 400", http.MethodPost, "/customers/1/checkout", map[string]any{"method": "BITCOIN"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRequestIDEchoedBack(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}

	// Without a client-supplied id one is generated.
	rec = doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rec.Header().Get(headerRequestID) == "" {
		t.Errorf("no request id generated")
	}
}
