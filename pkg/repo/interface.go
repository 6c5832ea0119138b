package repo

import (
	"context"
	"time"
)

// TradeRecord is one executed trade persisted to the journal.
type TradeRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Symbol      string    `gorm:"index:idx_trades_symbol_time"`
	BuyOrderID  string    `gorm:"column:buy_order_id"`
	SellOrderID string    `gorm:"column:sell_order_id"`
	Price       float64
	Qty         int64
	ExecutedAt  time.Time `gorm:"index:idx_trades_symbol_time"`
	CreatedAt   time.Time
}

func (TradeRecord) TableName() string { return "trades" }

// OrderEventRecord is one order lifecycle event persisted to the journal.
type OrderEventRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	EventID   string `gorm:"uniqueIndex"`
	OrderID   string `gorm:"index"`
	Symbol    string
	ExecType  string
	Qty       int64
	Price     float64
	Reason    string
	Timestamp time.Time
	CreatedAt time.Time
}

func (OrderEventRecord) TableName() string { return "order_events" }

type ITrade interface {
	Create(ctx context.Context, record *TradeRecord) (*TradeRecord, error)
	BulkCreate(ctx context.Context, records []*TradeRecord) ([]*TradeRecord, error)
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]*TradeRecord, error)
}

type IOrderEvent interface {
	Create(ctx context.Context, record *OrderEventRecord) (*OrderEventRecord, error)
	BulkCreate(ctx context.Context, records []*OrderEventRecord) ([]*OrderEventRecord, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*OrderEventRecord, error)
}
