package engine

import "errors"

var (
	ErrEngineClosed       = errors.New("engine closed")
	ErrOrderRejected      = errors.New("order rejected")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)
