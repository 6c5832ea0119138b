package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/corefin/matchbook/pkg/book"
	"github.com/corefin/matchbook/pkg/engine/eventstore"
	"github.com/corefin/matchbook/pkg/engine/model"
	"github.com/corefin/matchbook/pkg/engine/risk"
	"github.com/corefin/matchbook/pkg/logging"
)

const (
	defaultVWAPWindow = 20
	defaultQueueSize  = 1024
)

type Config struct {
	Symbols     []string `yaml:"symbols"`
	PricePolicy string   `yaml:"price_policy"` // ask (default), bid, mid
	VWAPWindow  int      `yaml:"vwap_window"`
	QueueSize   int      `yaml:"queue_size"`
}

// TradeSink receives every executed trade of a match pass. Sinks run on the
// caller's goroutine, never on the session loop, and must be safe for use
// from multiple symbols at once.
type TradeSink interface {
	OnTrade(ctx context.Context, symbol string, trades []book.Trade)
}

// QuoteSink receives the refreshed per-symbol quote after each match pass
// that produced trades.
type QuoteSink interface {
	OnQuote(ctx context.Context, quote *Quote)
}

// EventSink receives every order lifecycle event the engine journals. Like
// the other sinks it runs on the caller's goroutine, never on the session
// loop.
type EventSink interface {
	OnOrderEvent(ctx context.Context, event *model.OrderEvent)
}

// Quote is the aggregate market-data view of one symbol.
type Quote struct {
	Symbol           string    `json:"symbol"`
	BestBid          float64   `json:"best_bid"`
	BestAsk          float64   `json:"best_ask"`
	HasBid           bool      `json:"has_bid"`
	HasAsk           bool      `json:"has_ask"`
	LastPrice        float64   `json:"last_price"`
	VWAP             float64   `json:"vwap"`
	VolumeLastMinute int64     `json:"volume_last_minute"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Option func(*Engine)

func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

func WithRules(rules ...risk.Rule) Option {
	return func(e *Engine) { e.rules = append(e.rules, rules...) }
}

func WithEventStore(es eventstore.EventStore) Option {
	return func(e *Engine) { e.events = es }
}

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// Engine runs one independent book+tape pair per symbol, each pinned to its
// own sequential session. Symbols never share state, so unrelated symbols
// never serialize against each other.
type Engine struct {
	cfg    *Config
	log    *logging.Logger
	ids    IDGenerator
	rules  []risk.Rule
	events eventstore.EventStore
	clock  func() time.Time
	policy book.PricePolicy

	tradeSinks []TradeSink
	quoteSinks []QuoteSink
	eventSinks []EventSink

	sessions sync.Map // symbol -> *session
}

func New(cfg *Config, opts ...Option) *Engine {
	if cfg.VWAPWindow <= 0 {
		cfg.VWAPWindow = defaultVWAPWindow
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	e := &Engine{
		cfg:    cfg,
		log:    logging.NewLogger(zapcore.InfoLevel),
		ids:    UUIDGenerator{},
		events: eventstore.NewInMemoryEventStore(),
		clock:  time.Now,
		policy: pricePolicy(cfg.PricePolicy),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func pricePolicy(name string) book.PricePolicy {
	switch name {
	case "bid":
		return book.BidPricePolicy
	case "mid":
		return book.MidpointPolicy
	default:
		return book.AskPricePolicy
	}
}

// Start warms up a session per configured symbol. Sessions for other
// symbols are created lazily on first use.
func (e *Engine) Start(ctx context.Context) {
	for _, symbol := range e.cfg.Symbols {
		e.session(symbol)
	}
	e.log.Info(ctx, "engine started", zap.Strings("symbols", e.cfg.Symbols))
}

func (e *Engine) Stop() {
	e.sessions.Range(func(_, v any) bool {
		v.(*session).stop()
		return true
	})
}

func (e *Engine) RegisterTradeSink(sink TradeSink) {
	e.tradeSinks = append(e.tradeSinks, sink)
}

func (e *Engine) RegisterQuoteSink(sink QuoteSink) {
	e.quoteSinks = append(e.quoteSinks, sink)
}

func (e *Engine) RegisterEventSink(sink EventSink) {
	e.eventSinks = append(e.eventSinks, sink)
}

func (e *Engine) emitEvents(ctx context.Context, events ...*model.OrderEvent) {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		for _, sink := range e.eventSinks {
			sink.OnOrderEvent(ctx, ev)
		}
	}
}

func (e *Engine) session(symbol string) *session {
	if val, ok := e.sessions.Load(symbol); ok {
		return val.(*session)
	}

	s := newSession(symbol, e.policy, e.clock, e.cfg.QueueSize)
	actual, loaded := e.sessions.LoadOrStore(symbol, s)
	if loaded {
		s.stop()
	}
	return actual.(*session)
}

// SubmitOrder runs the admission rules, assigns an order id when the
// gateway supplied none, and rests the order in the symbol's book. It never
// triggers matching; callers batch submissions and cross with Match.
func (e *Engine) SubmitOrder(ctx context.Context, sub *model.Submission) (*model.Order, error) {
	if sub.OrderID == "" {
		sub.OrderID = e.ids.NextID()
	}
	if sub.TransactTime.IsZero() {
		sub.TransactTime = e.clock()
	}

	for _, rule := range e.rules {
		if err := rule.Check(sub); err != nil {
			e.log.Warn(ctx, "order rejected by admission rule",
				zap.String("symbol", sub.Symbol), zap.Error(err))
			e.emitEvents(ctx, e.journalReject(model.NewOrderFromSubmission(sub), err))
			return nil, fmt.Errorf("%w: %v", ErrOrderRejected, err)
		}
	}

	s := e.session(sub.Symbol)

	var (
		order  *model.Order
		ev     *model.OrderEvent
		addErr error
	)
	err := s.do(ctx, func() {
		order = model.NewOrderFromSubmission(sub)
		bookOrder := book.NewOrder(
			order.OrderID,
			book.Side(order.Side),
			order.Price.InexactFloat64(),
			order.Quantity.IntPart(),
			order.TransactTime,
		)
		if addErr = s.book.AddOrder(bookOrder); addErr != nil {
			ev = e.journalReject(order, addErr)
			return
		}
		s.orders[order.OrderID] = order
		ev = model.NewOrderEvent(order, model.ExecTypeNew, e.clock())
		e.events.AddEvent(ev)
	})
	if err != nil {
		return nil, err
	}
	e.emitEvents(ctx, ev)
	if addErr != nil {
		return nil, addErr
	}

	out := *order
	return &out, nil
}

// journalReject marks the order rejected and appends the Rejected event with
// the rejection cause, so refused submissions leave a journal trail too.
func (e *Engine) journalReject(order *model.Order, cause error) *model.OrderEvent {
	order.MarkRejected()
	ev := model.NewOrderEvent(order, model.ExecTypeRejected, e.clock())
	ev.Reason = cause.Error()
	e.events.AddEvent(ev)
	return ev
}

// Match runs one crossing pass on the symbol's book, records the resulting
// trades on the tape, updates order lifecycles, and fans the trades and the
// refreshed quote out to the registered sinks.
func (e *Engine) Match(ctx context.Context, symbol string) ([]book.Trade, error) {
	s := e.session(symbol)

	var (
		trades []book.Trade
		events []*model.OrderEvent
		quote  *Quote
	)
	err := s.do(ctx, func() {
		trades = s.book.MatchOrders()
		for _, tr := range trades {
			s.tape.RecordTrade(tr)
			events = append(events,
				e.applyFill(s, tr.BuyOrderID, tr),
				e.applyFill(s, tr.SellOrderID, tr))
		}
		if len(trades) > 0 {
			quote = e.buildQuote(s)
		}
	})
	if err != nil {
		return nil, err
	}

	e.emitEvents(ctx, events...)
	if len(trades) > 0 {
		for _, sink := range e.tradeSinks {
			sink.OnTrade(ctx, symbol, trades)
		}
		for _, sink := range e.quoteSinks {
			sink.OnQuote(ctx, quote)
		}
	}

	return trades, nil
}

func (e *Engine) applyFill(s *session, orderID string, tr book.Trade) *model.OrderEvent {
	order, ok := s.orders[orderID]
	if !ok {
		return nil
	}
	order.ApplyFill(decimal.NewFromInt(tr.Qty), decimal.NewFromFloat(tr.Price))
	ev := model.NewOrderEvent(order, model.ExecTypeTrade, tr.Timestamp)
	e.events.AddEvent(ev)
	if order.IsTerminal() {
		delete(s.orders, orderID)
	}
	return ev
}

// CancelOrder removes a resting order. Cancels run on the same session as
// submissions and matching, so they never interleave with a crossing pass.
func (e *Engine) CancelOrder(ctx context.Context, symbol, orderID string) error {
	s := e.session(symbol)

	var (
		ev    *model.OrderEvent
		opErr error
	)
	err := s.do(ctx, func() {
		order, ok := s.orders[orderID]
		if !ok {
			opErr = fmt.Errorf("%w: %s", book.ErrOrderNotFound, orderID)
			return
		}
		if !order.CanCancel() {
			opErr = fmt.Errorf("%w: %s is %s", ErrInvalidOrderStatus, orderID, order.Status)
			return
		}
		if opErr = s.book.RemoveOrder(orderID); opErr != nil {
			return
		}
		order.MarkCanceled()
		delete(s.orders, orderID)
		ev = model.NewOrderEvent(order, model.ExecTypeCanceled, e.clock())
		e.events.AddEvent(ev)
	})
	if err != nil {
		return err
	}
	e.emitEvents(ctx, ev)
	return opErr
}

func (e *Engine) BestBid(ctx context.Context, symbol string) (float64, error) {
	s := e.session(symbol)
	var (
		price float64
		opErr error
	)
	if err := s.do(ctx, func() { price, opErr = s.book.BestBid() }); err != nil {
		return 0, err
	}
	return price, opErr
}

func (e *Engine) BestAsk(ctx context.Context, symbol string) (float64, error) {
	s := e.session(symbol)
	var (
		price float64
		opErr error
	)
	if err := s.do(ctx, func() { price, opErr = s.book.BestAsk() }); err != nil {
		return 0, err
	}
	return price, opErr
}

func (e *Engine) VolumeAtPrice(ctx context.Context, symbol string, price float64) (int64, error) {
	s := e.session(symbol)
	var volume int64
	if err := s.do(ctx, func() { volume = s.book.VolumeAtPrice(price) }); err != nil {
		return 0, err
	}
	return volume, nil
}

func (e *Engine) Snapshot(ctx context.Context, symbol string) ([]book.LevelSnapshot, error) {
	s := e.session(symbol)
	var snap []book.LevelSnapshot
	if err := s.do(ctx, func() { snap = s.book.Snapshot() }); err != nil {
		return nil, err
	}
	return snap, nil
}

func (e *Engine) RecentTrades(ctx context.Context, symbol string, n int) ([]book.Trade, error) {
	s := e.session(symbol)
	var trades []book.Trade
	if err := s.do(ctx, func() { trades = s.tape.RecentTrades(n) }); err != nil {
		return nil, err
	}
	return trades, nil
}

func (e *Engine) Quote(ctx context.Context, symbol string) (*Quote, error) {
	s := e.session(symbol)
	var quote *Quote
	if err := s.do(ctx, func() { quote = e.buildQuote(s) }); err != nil {
		return nil, err
	}
	return quote, nil
}

// Order returns a copy of the engine's lifecycle record for a resident
// order, or its last journal event when the order already left the book.
func (e *Engine) Order(ctx context.Context, symbol, orderID string) (*model.Order, error) {
	s := e.session(symbol)
	var (
		out   *model.Order
		opErr error
	)
	err := s.do(ctx, func() {
		order, ok := s.orders[orderID]
		if !ok {
			opErr = fmt.Errorf("%w: %s", book.ErrOrderNotFound, orderID)
			return
		}
		cp := *order
		out = &cp
	})
	if err != nil {
		return nil, err
	}
	return out, opErr
}

// Events exposes the order's lifecycle journal.
func (e *Engine) Events(orderID string) []*model.OrderEvent {
	return e.events.Events(orderID)
}

// buildQuote runs on the session goroutine.
func (e *Engine) buildQuote(s *session) *Quote {
	q := &Quote{Symbol: s.symbol, UpdatedAt: e.clock()}

	if bid, err := s.book.BestBid(); err == nil {
		q.BestBid, q.HasBid = bid, true
	}
	if ask, err := s.book.BestAsk(); err == nil {
		q.BestAsk, q.HasAsk = ask, true
	}
	if last, err := s.tape.LastTradePrice(); err == nil {
		q.LastPrice = last
	}
	if vwap, err := s.tape.VWAP(e.cfg.VWAPWindow); err == nil {
		q.VWAP = vwap
	}
	q.VolumeLastMinute = s.tape.VolumeInLastMinute()

	return q
}
