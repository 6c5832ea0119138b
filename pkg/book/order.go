package book

import (
	"fmt"
	"time"
)

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Order is one resting intent to trade at Price or better. Identity fields
// never change after construction; only the remaining quantity moves, and
// only downward.
type Order struct {
	ID        string
	Side      Side
	Price     float64
	Timestamp time.Time

	remaining int64
}

func NewOrder(id string, side Side, price float64, qty int64, ts time.Time) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Timestamp: ts,
		remaining: qty,
	}
}

func (o *Order) RemainingQty() int64 {
	return o.remaining
}

// ReduceBy subtracts a fill from the remaining quantity. A reduction that is
// non-positive or exceeds the remaining quantity indicates a caller bug and
// leaves the order untouched.
func (o *Order) ReduceBy(qty int64) error {
	if qty <= 0 || qty > o.remaining {
		return fmt.Errorf("%w: reduce %d of %d", ErrInvalidFill, qty, o.remaining)
	}
	o.remaining -= qty
	return nil
}
