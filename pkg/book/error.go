package book

import "errors"

var (
	ErrInvalidOrder   = errors.New("invalid order")
	ErrInvalidFill    = errors.New("invalid fill")
	ErrDuplicateOrder = errors.New("duplicate order")
	ErrOrderNotFound  = errors.New("order not found")
	ErrEmptyBook      = errors.New("empty book side")
)
