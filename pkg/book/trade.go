package book

import "time"

// Trade is one executed cross between a resting buy and a resting sell.
// Never mutated after the matching pass emits it.
type Trade struct {
	BuyOrderID  string  `json:"buy_order_id"`
	SellOrderID string  `json:"sell_order_id"`
	Price       float64 `json:"price"`
	Qty         int64   `json:"qty"`
	Timestamp   time.Time `json:"timestamp"`
}
