package cart

import (
	"errors"
	"testing"
)

func TestAddMergesExistingLine(t *testing.T) {
	c, err := New(1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustAdd(t, c, 10, 2)
	mustAdd(t, c, 20, 1)
	mustAdd(t, c, 10, 3)

	lines := c.Lines()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0].ProductID != 10 || lines[0].Quantity != 5 {
		t.Errorf("lines[0] = %+v, want product 10 qty 5", lines[0])
	}
	if lines[1].ProductID != 20 || lines[1].Quantity != 1 {
		t.Errorf("lines[1] = %+v, want product 20 qty 1", lines[1])
	}
}

func TestRemoveDropsLineAtZero(t *testing.T) {
	c, _ := New(1)
	mustAdd(t, c, 10, 2)

	if err := c.Remove(10, 2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("cart not empty after removing full quantity")
	}
}

func TestRemoveBelowZeroDropsLine(t *testing.T) {
	c, _ := New(1)
	mustAdd(t, c, 10, 2)

	if err := c.Remove(10, 5); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := c.Quantity(10); got != 0 {
		t.Errorf("Quantity(10) = %d, want 0", got)
	}
}

func TestRemoveAbsentProductIsNoop(t *testing.T) {
	c, _ := New(1)
	mustAdd(t, c, 10, 2)

	if err := c.Remove(99, 1); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	if got := c.Quantity(10); got != 2 {
		t.Errorf("Quantity(10) = %d, want 2", got)
	}
}

func TestInvalidQuantities(t *testing.T) {
	c, _ := New(1)
	if err := c.Add(10, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Add(qty 0): err = %v, want ErrInvalidQuantity", err)
	}
	if err := c.Remove(10, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Remove(qty -1): err = %v, want ErrInvalidQuantity", err)
	}
}

func TestClear(t *testing.T) {
	c, _ := New(1)
	mustAdd(t, c, 10, 2)
	mustAdd(t, c, 20, 4)
	c.Clear()
	if !c.IsEmpty() {
		t.Errorf("cart not empty after Clear")
	}
}

func TestRestorePreservesOrder(t *testing.T) {
	src := []Line{{ProductID: 3, Quantity: 1}, {ProductID: 1, Quantity: 2}}
	c := Restore(5, src)

	src[0].Quantity = 99
	lines := c.Lines()
	if lines[0].ProductID != 3 || lines[0].Quantity != 1 {
		t.Errorf("lines[0] = %+v, want product 3 qty 1", lines[0])
	}
	if lines[1].ProductID != 1 {
		t.Errorf("line order not preserved: %+v", lines)
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	c, _ := New(1)
	mustAdd(t, c, 10, 2)
	c.Lines()[0].Quantity = 99
	if got := c.Quantity(10); got != 2 {
		t.Errorf("Quantity(10) = %d after mutating Lines() result, want 2", got)
	}
}

func mustAdd(t *testing.T, c *Cart, productID int64, qty int) {
	t.Helper()
	if err := c.Add(productID, qty); err != nil {
		t.Fatalf("Add(%d, %d): %v", productID, qty, err)
	}
}
