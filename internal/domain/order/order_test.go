package order

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewItemComputesLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		unitPrice string
		want      string
	}{
		{"whole units", 3, "10.00", "30.00"},
		{"rounds half up", 3, "0.335", "1.01"},
		{"single unit", 1, "19.99", "19.99"},
		{"sub-cent price accumulates", 7, "0.111", "0.78"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.unitPrice)
			item, err := NewItem(1, tt.qty, price)
			if err != nil {
				t.Fatalf("NewItem: %v", err)
			}
			if got := item.LineTotal.StringFixed(2); got != tt.want {
				t.Errorf("LineTotal = %s, want %s", got, tt.want)
			}
			if !item.UnitPrice.Equal(price) {
				t.Errorf("UnitPrice mutated: %s", item.UnitPrice)
			}
		})
	}
}

func TestNewItemRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		if _, err := NewItem(1, qty, decimal.NewFromInt(5)); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("qty %d: err = %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestOrderTotalIsSumOfLineTotals(t *testing.T) {
	ord, err := New(7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, line := range []struct {
		qty   int
		price string
	}{
		{2, "10.50"},
		{1, "0.99"},
		{3, "3.33"},
	} {
		item, err := NewItem(1, line.qty, decimal.RequireFromString(line.price))
		if err != nil {
			t.Fatalf("NewItem: %v", err)
		}
		ord.AddItem(item)
	}
	if got := ord.Total.StringFixed(2); got != "31.98" {
		t.Errorf("Total = %s, want 31.98", got)
	}
}

func TestNewRejectsNonPositiveCustomer(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidCustomer) {
		t.Errorf("err = %v, want ErrInvalidCustomer", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusPaid, true},
		{StatusNew, StatusCancelled, true},
		{StatusPaid, StatusCancelled, false},
		{StatusPaid, StatusNew, false},
		{StatusCancelled, StatusPaid, false},
		{StatusCancelled, StatusNew, false},
		{StatusNew, StatusNew, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMarkPaidThenCancelFails(t *testing.T) {
	ord, _ := New(1)
	if err := ord.MarkPaid(); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if err := ord.MarkCancelled(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("MarkCancelled after paid: err = %v, want ErrInvalidTransition", err)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"NEW", "PAID", "CANCELLED"} {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseStatus("SHIPPED"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("ParseStatus(SHIPPED): err = %v, want ErrUnknownStatus", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ord, _ := New(1)
	item, _ := NewItem(9, 1, decimal.NewFromInt(5))
	ord.AddItem(item)

	clone := ord.Clone()
	clone.Items[0].Quantity = 99
	clone.Status = StatusPaid

	if ord.Items[0].Quantity != 1 {
		t.Errorf("clone mutation leaked into original items")
	}
	if ord.Status != StatusNew {
		t.Errorf("clone mutation leaked into original status")
	}
}
