package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/corefin/matchbook/pkg/logging"
	"github.com/corefin/matchbook/pkg/repo"
	"github.com/corefin/matchbook/pkg/stream"
)

type fakeTradeRepo struct {
	records []*repo.TradeRecord
}

func (f *fakeTradeRepo) Create(_ context.Context, r *repo.TradeRecord) (*repo.TradeRecord, error) {
	f.records = append(f.records, r)
	return r, nil
}

func (f *fakeTradeRepo) BulkCreate(_ context.Context, rs []*repo.TradeRecord) ([]*repo.TradeRecord, error) {
	f.records = append(f.records, rs...)
	return rs, nil
}

func (f *fakeTradeRepo) ListBySymbol(context.Context, string, int) ([]*repo.TradeRecord, error) {
	return f.records, nil
}

type fakeOrderEventRepo struct {
	records []*repo.OrderEventRecord
}

func (f *fakeOrderEventRepo) Create(_ context.Context, r *repo.OrderEventRecord) (*repo.OrderEventRecord, error) {
	f.records = append(f.records, r)
	return r, nil
}

func (f *fakeOrderEventRepo) BulkCreate(_ context.Context, rs []*repo.OrderEventRecord) ([]*repo.OrderEventRecord, error) {
	f.records = append(f.records, rs...)
	return rs, nil
}

func (f *fakeOrderEventRepo) ListByOrderID(context.Context, string) ([]*repo.OrderEventRecord, error) {
	return f.records, nil
}

type fakeRepo struct {
	trades *fakeTradeRepo
	events *fakeOrderEventRepo
}

func (f *fakeRepo) Trade() repo.ITrade           { return f.trades }
func (f *fakeRepo) OrderEvent() repo.IOrderEvent { return f.events }

func newTestWorker() (*Worker, *fakeRepo) {
	fr := &fakeRepo{trades: &fakeTradeRepo{}, events: &fakeOrderEventRepo{}}
	return NewWorker(fr, logging.NewLogger(zapcore.ErrorLevel)), fr
}

func encode(t *testing.T, v any) kafka.Message {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestHandleTradeBatch(t *testing.T) {
	w, fr := newTestWorker()
	ctx := context.Background()
	executed := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	msgs := []kafka.Message{
		encode(t, stream.TradeMessage{
			Symbol: "ABC", BuyOrderID: "B1", SellOrderID: "S1",
			Price: 99, Qty: 5, ExecutedAt: executed,
		}),
		{Value: []byte("not json")}, // skipped, not fatal
		encode(t, stream.TradeMessage{
			Symbol: "ABC", BuyOrderID: "B2", SellOrderID: "S1",
			Price: 99.5, Qty: 3, ExecutedAt: executed,
		}),
	}

	require.NoError(t, w.handleTradeBatch(ctx, msgs))
	require.Len(t, fr.trades.records, 2)
	assert.Equal(t, "B1", fr.trades.records[0].BuyOrderID)
	assert.Equal(t, int64(3), fr.trades.records[1].Qty)
	assert.True(t, fr.trades.records[0].ExecutedAt.Equal(executed))
}

func TestHandleOrderEventBatch(t *testing.T) {
	w, fr := newTestWorker()
	ctx := context.Background()
	ts := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	msgs := []kafka.Message{
		encode(t, stream.OrderEventMessage{
			EventID: "E1", OrderID: "ORD-001", Symbol: "ABC",
			ExecType: "New", Timestamp: ts,
		}),
		encode(t, stream.OrderEventMessage{
			EventID: "E2", OrderID: "ORD-001", Symbol: "ABC",
			ExecType: "Trade", Qty: 5, Price: 99, Timestamp: ts,
		}),
		encode(t, stream.OrderEventMessage{
			EventID: "E3", OrderID: "ORD-002", Symbol: "ABC",
			ExecType: "Rejected", Reason: "price outside band", Timestamp: ts,
		}),
	}

	require.NoError(t, w.handleOrderEventBatch(ctx, msgs))
	require.Len(t, fr.events.records, 3)
	assert.Equal(t, "Trade", fr.events.records[1].ExecType)
	assert.Equal(t, int64(5), fr.events.records[1].Qty)
	assert.Equal(t, "price outside band", fr.events.records[2].Reason)
}

func TestHandleEmptyBatchIsNoop(t *testing.T) {
	w, fr := newTestWorker()
	ctx := context.Background()

	require.NoError(t, w.handleTradeBatch(ctx, []kafka.Message{{Value: []byte("{")}}))
	require.NoError(t, w.handleOrderEventBatch(ctx, nil))
	assert.Empty(t, fr.trades.records)
	assert.Empty(t, fr.events.records)
}
