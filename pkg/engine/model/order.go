package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusRejected        OrderStatus = "Rejected"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Submission is an order as handed to the engine by a gateway, before an
// order id has been assigned. Prices and quantities stay decimal until the
// book boundary.
type Submission struct {
	OrderID      string // optional; generated when empty
	Account      string
	Symbol       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time
}

// Order is the engine's lifecycle record of one submission.
type Order struct {
	OrderID      string
	Account      string
	Symbol       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time

	Status         OrderStatus
	CumQuantity    decimal.Decimal
	LeavesQuantity decimal.Decimal
	LastQuantity   decimal.Decimal
	LastPrice      decimal.Decimal
}

func NewOrderFromSubmission(sub *Submission) *Order {
	return &Order{
		OrderID:        sub.OrderID,
		Account:        sub.Account,
		Symbol:         sub.Symbol,
		Side:           sub.Side,
		Price:          sub.Price,
		Quantity:       sub.Quantity,
		TransactTime:   sub.TransactTime,
		Status:         OrderStatusNew,
		LeavesQuantity: sub.Quantity,
	}
}

// ApplyFill moves qty from leaves to cum and advances the status.
func (o *Order) ApplyFill(qty, price decimal.Decimal) {
	o.CumQuantity = o.CumQuantity.Add(qty)
	o.LeavesQuantity = o.Quantity.Sub(o.CumQuantity)
	o.LastQuantity = qty
	o.LastPrice = price

	if o.LeavesQuantity.IsZero() {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartiallyFilled
	}
}

func (o *Order) MarkCanceled() {
	o.Status = OrderStatusCanceled
	o.LeavesQuantity = decimal.Zero
}

func (o *Order) MarkRejected() {
	o.Status = OrderStatusRejected
	o.LeavesQuantity = decimal.Zero
}

func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusNew || o.Status == OrderStatusPartiallyFilled
}

func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusFilled ||
		o.Status == OrderStatusCanceled ||
		o.Status == OrderStatusRejected
}
