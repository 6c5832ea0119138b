package stream

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/corefin/matchbook/pkg/engine/model"
	"github.com/corefin/matchbook/pkg/logging"
)

// OrderEventMessage is the wire form of one lifecycle event on the order
// event topic, keyed by symbol like the trade topic.
type OrderEventMessage struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	ExecType  string    `json:"exec_type"`
	Qty       int64     `json:"qty"`
	Price     float64   `json:"price"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEventPublisher forwards order lifecycle events to Kafka. It
// implements the engine's EventSink.
type OrderEventPublisher struct {
	producer *Producer
	log      *logging.Logger
}

func NewOrderEventPublisher(producer *Producer, log *logging.Logger) *OrderEventPublisher {
	return &OrderEventPublisher{producer: producer, log: log}
}

func (p *OrderEventPublisher) OnOrderEvent(ctx context.Context, ev *model.OrderEvent) {
	msg := OrderEventMessage{
		EventID:   ev.EventID,
		OrderID:   ev.OrderID,
		Symbol:    ev.Symbol,
		ExecType:  string(ev.ExecType),
		Qty:       ev.Qty,
		Price:     ev.Price,
		Reason:    ev.Reason,
		Timestamp: ev.Timestamp,
	}
	if err := p.producer.PublishJSON(ctx, ev.Symbol, msg); err != nil {
		p.log.Error(ctx, "publish order event failed",
			zap.String("symbol", ev.Symbol), zap.String("order_id", ev.OrderID), zap.Error(err))
	}
}
