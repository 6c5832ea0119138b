package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefin/matchbook/pkg/book"
	"github.com/corefin/matchbook/pkg/engine/model"
	"github.com/corefin/matchbook/pkg/engine/risk"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("ORD-%03d", g.n)
}

type captureSink struct {
	mu     sync.Mutex
	trades []book.Trade
	quotes []*Quote
	events []*model.OrderEvent
}

func (c *captureSink) OnTrade(_ context.Context, _ string, trades []book.Trade) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trades = append(c.trades, trades...)
}

func (c *captureSink) OnQuote(_ context.Context, quote *Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = append(c.quotes, quote)
}

func (c *captureSink) OnOrderEvent(_ context.Context, ev *model.OrderEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

var testClock = func() time.Time {
	return time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithIDGenerator(&seqIDs{}), WithClock(testClock)}, opts...)
	e := New(&Config{Symbols: []string{"ABC"}}, opts...)
	e.Start(context.Background())
	t.Cleanup(e.Stop)
	return e
}

func submission(symbol string, side model.OrderSide, price float64, qty int64) *model.Submission {
	return &model.Submission{
		Symbol:   symbol,
		Side:     side,
		Price:    decimal.NewFromFloat(price),
		Quantity: decimal.NewFromInt(qty),
	}
}

func TestSubmitDoesNotMatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideBuy, 100, 10))
	require.NoError(t, err)
	_, err = e.SubmitOrder(ctx, submission("ABC", model.OrderSideSell, 99, 5))
	require.NoError(t, err)

	// submissions rest; crossing happens only on an explicit Match call
	trades, err := e.RecentTrades(ctx, "ABC", 10)
	require.NoError(t, err)
	assert.Empty(t, trades)

	bid, err := e.BestBid(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, 100.0, bid)
}

func TestSubmitAndMatch(t *testing.T) {
	e := newTestEngine(t)
	sink := &captureSink{}
	e.RegisterTradeSink(sink)
	e.RegisterQuoteSink(sink)
	ctx := context.Background()

	buy, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideBuy, 100, 10))
	require.NoError(t, err)
	sell, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideSell, 99, 5))
	require.NoError(t, err)

	trades, err := e.Match(ctx, "ABC")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, buy.OrderID, trades[0].BuyOrderID)
	assert.Equal(t, sell.OrderID, trades[0].SellOrderID)
	assert.Equal(t, int64(5), trades[0].Qty)
	assert.Equal(t, 99.0, trades[0].Price)

	// buyer is partially filled and still resident
	order, err := e.Order(ctx, "ABC", buy.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPartiallyFilled, order.Status)
	assert.True(t, order.LeavesQuantity.Equal(decimal.NewFromInt(5)))

	// seller is fully filled and gone from the book
	_, err = e.Order(ctx, "ABC", sell.OrderID)
	assert.ErrorIs(t, err, book.ErrOrderNotFound)

	// sinks observed the pass
	assert.Len(t, sink.trades, 1)
	require.Len(t, sink.quotes, 1)
	assert.Equal(t, 99.0, sink.quotes[0].LastPrice)
	assert.Equal(t, int64(5), sink.quotes[0].VolumeLastMinute)

	// lifecycle journal: New then Trade
	events := e.Events(sell.OrderID)
	require.Len(t, events, 2)
	assert.Equal(t, model.ExecTypeNew, events[0].ExecType)
	assert.Equal(t, model.ExecTypeTrade, events[1].ExecType)
}

func TestSubmitRejectsInvalidOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideBuy, 0, 10))
	assert.ErrorIs(t, err, book.ErrInvalidOrder)

	_, err = e.SubmitOrder(ctx, submission("ABC", model.OrderSideSell, 100, 0))
	assert.ErrorIs(t, err, book.ErrInvalidOrder)

	snap, err := e.Snapshot(ctx, "ABC")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestAdmissionRuleRejects(t *testing.T) {
	e := newTestEngine(t, WithRules(risk.NewMaxQuantityRule(decimal.NewFromInt(100))))
	ctx := context.Background()

	sub := submission("ABC", model.OrderSideBuy, 100, 500)
	_, err := e.SubmitOrder(ctx, sub)
	assert.ErrorIs(t, err, ErrOrderRejected)

	// a rejected submission never reaches the book
	_, err = e.BestBid(ctx, "ABC")
	assert.ErrorIs(t, err, book.ErrEmptyBook)

	// but it still leaves a Rejected entry in the journal, with the cause
	events := e.Events(sub.OrderID)
	require.Len(t, events, 1)
	assert.Equal(t, model.ExecTypeRejected, events[0].ExecType)
	assert.NotEmpty(t, events[0].Reason)
}

func TestDuplicateOrderIDJournaledAsRejected(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	sub := submission("ABC", model.OrderSideBuy, 100, 10)
	sub.OrderID = "ORD-DUP"
	_, err := e.SubmitOrder(ctx, sub)
	require.NoError(t, err)

	again := submission("ABC", model.OrderSideBuy, 101, 5)
	again.OrderID = "ORD-DUP"
	_, err = e.SubmitOrder(ctx, again)
	assert.ErrorIs(t, err, book.ErrDuplicateOrder)

	events := e.Events("ORD-DUP")
	require.Len(t, events, 2)
	assert.Equal(t, model.ExecTypeNew, events[0].ExecType)
	assert.Equal(t, model.ExecTypeRejected, events[1].ExecType)
	assert.NotEmpty(t, events[1].Reason)

	// the resident order is untouched by the rejected resubmission
	order, err := e.Order(ctx, "ABC", "ORD-DUP")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, order.Status)
}

func TestEventSinkObservesLifecycle(t *testing.T) {
	e := newTestEngine(t)
	sink := &captureSink{}
	e.RegisterEventSink(sink)
	ctx := context.Background()

	buy, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideBuy, 100, 10))
	require.NoError(t, err)
	_, err = e.SubmitOrder(ctx, submission("ABC", model.OrderSideSell, 100, 4))
	require.NoError(t, err)

	_, err = e.Match(ctx, "ABC")
	require.NoError(t, err)

	require.NoError(t, e.CancelOrder(ctx, "ABC", buy.OrderID))

	// New, New, Trade (buy), Trade (sell), Canceled
	require.Len(t, sink.events, 5)
	types := make([]model.ExecType, 0, len(sink.events))
	for _, ev := range sink.events {
		types = append(types, ev.ExecType)
	}
	assert.Equal(t, []model.ExecType{
		model.ExecTypeNew,
		model.ExecTypeNew,
		model.ExecTypeTrade,
		model.ExecTypeTrade,
		model.ExecTypeCanceled,
	}, types)
}

func TestCancelOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	order, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideBuy, 100, 10))
	require.NoError(t, err)

	require.NoError(t, e.CancelOrder(ctx, "ABC", order.OrderID))

	_, err = e.BestBid(ctx, "ABC")
	assert.ErrorIs(t, err, book.ErrEmptyBook)

	err = e.CancelOrder(ctx, "ABC", order.OrderID)
	assert.ErrorIs(t, err, book.ErrOrderNotFound)

	events := e.Events(order.OrderID)
	require.Len(t, events, 2)
	assert.Equal(t, model.ExecTypeCanceled, events[1].ExecType)
}

func TestQuoteAggregates(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideBuy, 100, 10))
	require.NoError(t, err)
	_, err = e.SubmitOrder(ctx, submission("ABC", model.OrderSideSell, 100, 4))
	require.NoError(t, err)
	_, err = e.SubmitOrder(ctx, submission("ABC", model.OrderSideSell, 105, 3))
	require.NoError(t, err)

	_, err = e.Match(ctx, "ABC")
	require.NoError(t, err)

	quote, err := e.Quote(ctx, "ABC")
	require.NoError(t, err)
	assert.True(t, quote.HasBid)
	assert.Equal(t, 100.0, quote.BestBid)
	assert.True(t, quote.HasAsk)
	assert.Equal(t, 105.0, quote.BestAsk)
	assert.Equal(t, 100.0, quote.LastPrice)
	assert.Equal(t, 100.0, quote.VWAP)
	assert.Equal(t, int64(4), quote.VolumeLastMinute)
}

func TestSymbolsAreIndependent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.SubmitOrder(ctx, submission("ABC", model.OrderSideBuy, 100, 10))
	require.NoError(t, err)
	_, err = e.SubmitOrder(ctx, submission("XYZ", model.OrderSideSell, 50, 10))
	require.NoError(t, err)

	_, err = e.BestAsk(ctx, "ABC")
	assert.ErrorIs(t, err, book.ErrEmptyBook)

	ask, err := e.BestAsk(ctx, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, 50.0, ask)
}
