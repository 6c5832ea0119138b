package book

import (
	"errors"
	"testing"
)

func TestReduceBy(t *testing.T) {
	o := NewOrder("1", BUY, 100.0, 10, t0)

	if err := o.ReduceBy(4); err != nil {
		t.Fatalf("reduce 4: %v", err)
	}
	if got := o.RemainingQty(); got != 6 {
		t.Fatalf("expected 6 remaining, got %d", got)
	}

	if err := o.ReduceBy(7); !errors.Is(err, ErrInvalidFill) {
		t.Errorf("over-fill: expected ErrInvalidFill, got %v", err)
	}
	if err := o.ReduceBy(0); !errors.Is(err, ErrInvalidFill) {
		t.Errorf("zero fill: expected ErrInvalidFill, got %v", err)
	}
	if err := o.ReduceBy(-2); !errors.Is(err, ErrInvalidFill) {
		t.Errorf("negative fill: expected ErrInvalidFill, got %v", err)
	}
	if got := o.RemainingQty(); got != 6 {
		t.Errorf("failed reductions must not mutate, got %d", got)
	}

	if err := o.ReduceBy(6); err != nil {
		t.Fatalf("reduce to zero: %v", err)
	}
	if got := o.RemainingQty(); got != 0 {
		t.Errorf("expected fully filled, got %d", got)
	}
}
