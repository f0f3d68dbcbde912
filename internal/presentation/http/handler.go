// Package httpapi exposes the shopcore commands over HTTP. Routing uses
// chi; the error taxonomy maps to statuses in errors.go.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcart "github.com/mercato/shopcore/internal/application/cart"
	appcatalog "github.com/mercato/shopcore/internal/application/catalog"
	appcheckout "github.com/mercato/shopcore/internal/application/checkout"
	appcustomer "github.com/mercato/shopcore/internal/application/customer"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	apporder "github.com/mercato/shopcore/internal/application/order"
	apppayment "github.com/mercato/shopcore/internal/application/payment"
	domcatalog "github.com/mercato/shopcore/internal/domain/catalog"
	domorder "github.com/mercato/shopcore/internal/domain/order"
	dompayment "github.com/mercato/shopcore/internal/domain/payment"
	"github.com/mercato/shopcore/internal/observability"
)

type Handler struct {
	carts     *appcart.Service
	catalog   *appcatalog.Service
	checkout  *appcheckout.Service
	customers *appcustomer.Service
	inventory *appinv.Service
	orders    *apporder.Service
	payments  *apppayment.Service

	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewHandler(
	carts *appcart.Service,
	catalog *appcatalog.Service,
	checkout *appcheckout.Service,
	customers *appcustomer.Service,
	inventory *appinv.Service,
	orders *apporder.Service,
	payments *apppayment.Service,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Handler {
	return &Handler{
		carts:     carts,
		catalog:   catalog,
		checkout:  checkout,
		customers: customers,
		inventory: inventory,
		orders:    orders,
		payments:  payments,
		logger:    logger.With(zap.String("component", "http")),
		metrics:   metrics,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.requestContext)

	r.Get("/healthz", h.handleHealth)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.handleCreateProduct)
		r.Get("/", h.handleListProducts)
		r.Get("/{id}", h.handleGetProduct)
		r.Get("/sku/{sku}", h.handleGetProductBySKU)
		r.Patch("/{id}/active", h.handleSetProductActive)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/low-stock", h.handleLowStock)
		r.Get("/{productId}", h.handleGetStock)
		r.Put("/{productId}", h.handleSetStock)
		r.Post("/{productId}/reserve", h.handleReserve)
		r.Post("/{productId}/release", h.handleRelease)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.handleRegisterCustomer)
		r.Get("/{id}", h.handleGetCustomer)
		r.Route("/{customerId}/cart", func(r chi.Router) {
			r.Get("/", h.handleGetCart)
			r.Post("/items", h.handleCartAdd)
			r.Delete("/items", h.handleCartRemove)
			r.Delete("/", h.handleCartClear)
		})
		r.Post("/{customerId}/checkout", h.handleCheckout)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.handleCreateOrder)
		r.Get("/", h.handleListOrders)
		r.Get("/{id}", h.handleGetOrder)
		r.Post("/{id}/cancel", h.handleCancelOrder)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.handleProcessPayment)
		r.Get("/{id}", h.handleGetPayment)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- products ---

type createProductRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Active      *bool   `json:"active"`
	InStock     int     `json:"inStock"`
	CategoryIDs []int64 `json:"categoryIds"`
}

type productResponse struct {
	ID          int64   `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       string  `json:"price"`
	Active      bool    `json:"active"`
	CategoryIDs []int64 `json:"categoryIds,omitempty"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		badRequest(w, "price must be a decimal number")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	p, err := h.catalog.CreateProduct(r.Context(), appcatalog.CreateProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Active:      active,
		InStock:     req.InStock,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleGetProductBySKU(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProductBySKU(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleSetProductActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.catalog.SetProductActive(r.Context(), id, req.Active); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- inventory ---

type stockResponse struct {
	ProductID int64 `json:"productId"`
	InStock   int   `json:"inStock"`
}

func (h *Handler) handleGetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	stock, err := h.inventory.GetStock(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stockResponse{ProductID: id, InStock: stock})
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleSetStock(w http.ResponseWriter, r *http.Request) {
	h.stockMutation(w, r, h.inventory.SetStock)
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	h.stockMutation(w, r, h.inventory.Reserve)
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	h.stockMutation(w, r, h.inventory.Release)
}

func (h *Handler) stockMutation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, productID int64, qty int) error) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := op(r.Context(), id, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	stock, err := h.inventory.GetStock(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stockResponse{ProductID: id, InStock: stock})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 10
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "threshold must be an integer")
			return
		}
		threshold = v
	}
	records, err := h.inventory.FindLowStock(r.Context(), threshold)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]stockResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, stockResponse{ProductID: rec.ProductID, InStock: rec.InStock})
	}
	writeJSON(w, http.StatusOK, out)
}

// --- customers ---

type customerResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) handleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := h.customers.Register(r.Context(), req.Email, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerResponse{ID: c.ID, Email: c.Email, Name: c.Name})
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customerResponse{ID: c.ID, Email: c.Email, Name: c.Name})
}

// --- cart ---

type cartLineResponse struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type cartResponse struct {
	CustomerID int64              `json:"customerId"`
	Lines      []cartLineResponse `json:"lines"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerId")
	if !ok {
		return
	}
	c, err := h.carts.Get(r.Context(), customerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines := make([]cartLineResponse, 0)
	for _, l := range c.Lines() {
		lines = append(lines, cartLineResponse{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	writeJSON(w, http.StatusOK, cartResponse{CustomerID: customerID, Lines: lines})
}

type cartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerId")
	if !ok {
		return
	}
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.carts.Add(r.Context(), customerID, req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	h.handleGetCart(w, r)
}

func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerId")
	if !ok {
		return
	}
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.carts.Remove(r.Context(), customerID, req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	h.handleGetCart(w, r)
}

func (h *Handler) handleCartClear(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerId")
	if !ok {
		return
	}
	if err := h.carts.Clear(r.Context(), customerID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- checkout ---

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerId")
	if !ok {
		return
	}
	var req struct {
		Method string `json:"method"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	method, err := dompayment.ParseMethod(req.Method)
	if err != nil {
		badRequest(w, "unknown payment method: "+req.Method)
		return
	}
	ord, err := h.checkout.Checkout(r.Context(), customerID, method)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(ord))
}

// --- orders ---

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type createOrderRequest struct {
	CustomerID int64              `json:"customerId"`
	Items      []orderItemRequest `json:"items"`
}

type orderItemResponse struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

type orderResponse struct {
	ID         int64               `json:"id"`
	CustomerID int64               `json:"customerId"`
	Status     string              `json:"status"`
	Items      []orderItemResponse `json:"items"`
	Total      string              `json:"total"`
	PaymentID  int64               `json:"paymentId,omitempty"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	items := make([]apporder.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = apporder.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	ord, err := h.orders.CreateOrder(r.Context(), req.CustomerID, items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(ord))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*domorder.Order
		err    error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		orders, err = h.orders.ListByStatus(r.Context(), domorder.Status(raw))
	} else {
		orders, err = h.orders.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ord, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.orders.CancelOrder(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	ord, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(ord))
}

// --- payments ---

type processPaymentRequest struct {
	OrderID int64  `json:"orderId"`
	Method  string `json:"method"`
}

type paymentResponse struct {
	ID      int64  `json:"id"`
	OrderID int64  `json:"orderId"`
	Method  string `json:"method"`
	Status  string `json:"status"`
}

func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := h.payments.ProcessPayment(r.Context(), req.OrderID, dompayment.Method(req.Method))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

// --- helpers ---

func toProductResponse(p *domcatalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Active:      p.Active,
		CategoryIDs: p.CategoryIDs,
	}
}

func toOrderResponse(o *domorder.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			LineTotal: it.LineTotal.StringFixed(2),
		}
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Items:      items,
		Total:      o.Total.StringFixed(2),
		PaymentID:  o.PaymentID,
	}
}

func toPaymentResponse(p *dompayment.Payment) paymentResponse {
	return paymentResponse{
		ID:      p.ID,
		OrderID: p.OrderID,
		Method:  string(p.Method),
		Status:  string(p.Status),
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		badRequest(w, name+" must be an integer")
		return 0, false
	}
	return id, true
}
