package stream

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/corefin/matchbook/pkg/book"
	"github.com/corefin/matchbook/pkg/logging"
)

// TradeMessage is the wire form of one executed trade on the trade topic,
// keyed by symbol so one partition keeps one symbol's trades in order.
type TradeMessage struct {
	Symbol      string    `json:"symbol"`
	BuyOrderID  string    `json:"buy_order_id"`
	SellOrderID string    `json:"sell_order_id"`
	Price       float64   `json:"price"`
	Qty         int64     `json:"qty"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// TradePublisher forwards executed trades to Kafka. It implements the
// engine's TradeSink.
type TradePublisher struct {
	producer *Producer
	log      *logging.Logger
}

func NewTradePublisher(producer *Producer, log *logging.Logger) *TradePublisher {
	return &TradePublisher{producer: producer, log: log}
}

func (p *TradePublisher) OnTrade(ctx context.Context, symbol string, trades []book.Trade) {
	for _, tr := range trades {
		msg := TradeMessage{
			Symbol:      symbol,
			BuyOrderID:  tr.BuyOrderID,
			SellOrderID: tr.SellOrderID,
			Price:       tr.Price,
			Qty:         tr.Qty,
			ExecutedAt:  tr.Timestamp,
		}
		if err := p.producer.PublishJSON(ctx, symbol, msg); err != nil {
			p.log.Error(ctx, "publish trade failed",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}
}
