// Package worker drains the trade and order-event topics into the SQL
// journal.
package worker

import (
	"context"
	"encoding/json"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/corefin/matchbook/pkg/logging"
	"github.com/corefin/matchbook/pkg/repo"
	"github.com/corefin/matchbook/pkg/stream"
)

type Worker struct {
	trades repo.ITrade
	events repo.IOrderEvent
	log    *logging.Logger
}

func NewWorker(r repo.IRepo, log *logging.Logger) *Worker {
	return &Worker{
		trades: r.Trade(),
		events: r.OrderEvent(),
		log:    log,
	}
}

// RunTrades consumes trade batches until the context is canceled. A batch
// that fails to decode is skipped message by message; a batch that fails to
// insert is retried by the consumer group on redelivery.
func (w *Worker) RunTrades(ctx context.Context, cg *stream.ConsumerGroup) error {
	return cg.Run(ctx, w.handleTradeBatch)
}

// RunOrderEvents consumes order lifecycle event batches with the same
// skip-malformed, retry-on-insert-failure behavior as RunTrades.
func (w *Worker) RunOrderEvents(ctx context.Context, cg *stream.ConsumerGroup) error {
	return cg.Run(ctx, w.handleOrderEventBatch)
}

func (w *Worker) handleTradeBatch(ctx context.Context, msgs []kafka.Message) error {
	records := make([]*repo.TradeRecord, 0, len(msgs))
	for _, msg := range msgs {
		var tm stream.TradeMessage
		if err := json.Unmarshal(msg.Value, &tm); err != nil {
			w.log.Warn(ctx, "skip malformed trade message",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		records = append(records, &repo.TradeRecord{
			Symbol:      tm.Symbol,
			BuyOrderID:  tm.BuyOrderID,
			SellOrderID: tm.SellOrderID,
			Price:       tm.Price,
			Qty:         tm.Qty,
			ExecutedAt:  tm.ExecutedAt,
		})
	}

	if len(records) == 0 {
		return nil
	}

	_, err := w.trades.BulkCreate(ctx, records)
	return err
}

func (w *Worker) handleOrderEventBatch(ctx context.Context, msgs []kafka.Message) error {
	records := make([]*repo.OrderEventRecord, 0, len(msgs))
	for _, msg := range msgs {
		var em stream.OrderEventMessage
		if err := json.Unmarshal(msg.Value, &em); err != nil {
			w.log.Warn(ctx, "skip malformed order event message",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		records = append(records, &repo.OrderEventRecord{
			EventID:   em.EventID,
			OrderID:   em.OrderID,
			Symbol:    em.Symbol,
			ExecType:  em.ExecType,
			Qty:       em.Qty,
			Price:     em.Price,
			Reason:    em.Reason,
			Timestamp: em.Timestamp,
		})
	}

	if len(records) == 0 {
		return nil
	}

	_, err := w.events.BulkCreate(ctx, records)
	return err
}
