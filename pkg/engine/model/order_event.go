package model

import (
	"fmt"
	"time"
)

type ExecType string

const (
	ExecTypeNew      ExecType = "New"
	ExecTypeTrade    ExecType = "Trade"
	ExecTypeCanceled ExecType = "Canceled"
	ExecTypeRejected ExecType = "Rejected"
)

// OrderEvent is one append-only entry of an order's lifecycle journal.
type OrderEvent struct {
	EventID   string
	OrderID   string
	Symbol    string
	ExecType  ExecType
	Qty       int64
	Price     float64
	Reason    string
	Timestamp time.Time
}

func NewOrderEvent(order *Order, execType ExecType, ts time.Time) *OrderEvent {
	ev := &OrderEvent{
		EventID:   NewEventID(order.OrderID, execType, ts),
		OrderID:   order.OrderID,
		Symbol:    order.Symbol,
		ExecType:  execType,
		Timestamp: ts,
	}
	if execType == ExecTypeTrade {
		ev.Qty = order.LastQuantity.IntPart()
		ev.Price = order.LastPrice.InexactFloat64()
	}
	return ev
}

func NewEventID(orderID string, execType ExecType, ts time.Time) string {
	return fmt.Sprintf("%s-%s-%d", orderID, execType, ts.UnixNano())
}
