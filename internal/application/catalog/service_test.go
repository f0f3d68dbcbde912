package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mercato/shopcore/internal/apperr"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	"github.com/mercato/shopcore/internal/infrastructure/memory"
)

func newFixture(t *testing.T) (*Service, *appinv.Service) {
	t.Helper()
	runner := memory.NewRunner()
	ledger := appinv.NewService(memory.NewInventoryRepository(), runner, nil)
	return NewService(memory.NewProductRepository(), ledger, runner), ledger
}

func validInput() CreateProductInput {
	return CreateProductInput{
		SKU:     "SKU-1",
		Name:    "Widget",
		Price:   decimal.RequireFromString("9.95"),
		Active:  true,
		InStock: 25,
	}
}

func TestCreateProductSeedsStock(t *testing.T) {
	ctx := context.Background()
	svc, ledger := newFixture(t)

	p, err := svc.CreateProduct(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.ID == 0 {
		t.Errorf("product id not assigned")
	}
	stock, _ := ledger.GetStock(ctx, p.ID)
	if stock != 25 {
		t.Errorf("stock = %d, want 25", stock)
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture(t)

	if _, err := svc.CreateProduct(ctx, validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateProduct(ctx, validInput())
	if !apperr.IsBusinessRule(err) {
		t.Errorf("err = %v, want business rule", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateProductInput)
	}{
		{"blank sku", func(in *CreateProductInput) { in.SKU = "  " }},
		{"blank name", func(in *CreateProductInput) { in.Name = "" }},
		{"zero price", func(in *CreateProductInput) { in.Price = decimal.Zero }},
		{"negative price", func(in *CreateProductInput) { in.Price = decimal.NewFromInt(-1) }},
		{"negative stock", func(in *CreateProductInput) { in.InStock = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := svc.CreateProduct(ctx, in); !apperr.IsValidation(err) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestGetProductBySKU(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture(t)

	created, err := svc.CreateProduct(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	got, err := svc.GetProductBySKU(ctx, "SKU-1")
	if err != nil {
		t.Fatalf("GetProductBySKU: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("id = %d, want %d", got.ID, created.ID)
	}
	if _, err := svc.GetProductBySKU(ctx, "NOPE"); !apperr.IsNotFound(err) {
		t.Errorf("missing sku: err = %v, want not found", err)
	}
}

func TestSetProductActive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFixture(t)

	p, err := svc.CreateProduct(ctx, validInput())
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if err := svc.SetProductActive(ctx, p.ID, false); err != nil {
		t.Fatalf("SetProductActive: %v", err)
	}
	got, _ := svc.GetProduct(ctx, p.ID)
	if got.Active {
		t.Errorf("product still active")
	}
	if err := svc.SetProductActive(ctx, 999, true); !apperr.IsNotFound(err) {
		t.Errorf("missing product: err = %v, want not found", err)
	}
}
