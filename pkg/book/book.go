package book

import (
	"fmt"
	"time"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
	"github.com/gammazero/deque"
)

// priceLevel is the FIFO of resident orders at one exact price on one side.
// volume always equals the sum of remaining quantities in the queue; levels
// are removed the instant the queue empties.
type priceLevel struct {
	price  float64
	orders deque.Deque[*Order]
	volume int64
}

type orderRef struct {
	side  Side
	price float64
}

// LevelSnapshot is one (price, aggregate volume) entry of a book snapshot.
type LevelSnapshot struct {
	Side   Side    `json:"side"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

type Option func(*OrderBook)

func WithPricePolicy(p PricePolicy) Option {
	return func(ob *OrderBook) { ob.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(ob *OrderBook) { ob.now = now }
}

// OrderBook owns the two price ladders of one symbol. It takes no locks:
// all calls must come from a single owner, one sequential execution context
// per symbol.
type OrderBook struct {
	symbol string

	bids *rbt.Tree[float64, *priceLevel] // descending, Left() is best bid
	asks *rbt.Tree[float64, *priceLevel] // ascending, Left() is best ask

	index map[string]orderRef // order id -> resident location

	policy PricePolicy
	now    func() time.Time
}

func New(symbol string, opts ...Option) *OrderBook {
	ob := &OrderBook{
		symbol: symbol,
		bids: rbt.NewWith[float64, *priceLevel](func(a, b float64) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			}
			return 0
		}),
		asks: rbt.NewWith[float64, *priceLevel](func(a, b float64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			}
			return 0
		}),
		index:  make(map[string]orderRef),
		policy: AskPricePolicy,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(ob)
	}

	return ob
}

func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// AddOrder inserts a resting order at the back of its price level, creating
// the level if absent. Validation happens strictly before any mutation: a
// rejected order leaves both ladders untouched.
func (ob *OrderBook) AddOrder(order *Order) error {
	if order.Side != BUY && order.Side != SELL {
		return fmt.Errorf("%w: side %q", ErrInvalidOrder, order.Side)
	}
	if order.Price <= 0 {
		return fmt.Errorf("%w: price %v", ErrInvalidOrder, order.Price)
	}
	if order.remaining <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidOrder, order.remaining)
	}
	if _, ok := ob.index[order.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.ID)
	}

	ladder := ob.ladder(order.Side)
	level, found := ladder.Get(order.Price)
	if !found {
		level = &priceLevel{price: order.Price}
		ladder.Put(order.Price, level)
	}

	level.orders.PushBack(order)
	level.volume += order.remaining
	ob.index[order.ID] = orderRef{side: order.Side, price: order.Price}

	return nil
}

// MatchOrders runs one crossing pass: while the best bid price reaches the
// best ask price, the front orders of the two top levels trade at the
// configured policy price for min(remaining, remaining). A single call may
// drain one side completely. Matching is never triggered implicitly by
// AddOrder, so callers can batch insertions before crossing.
func (ob *OrderBook) MatchOrders() []Trade {
	var trades []Trade

	for !ob.bids.Empty() && !ob.asks.Empty() {
		bidLevel := ob.bids.Left().Value
		askLevel := ob.asks.Left().Value
		if bidLevel.price < askLevel.price {
			break
		}

		bid := bidLevel.orders.Front()
		ask := askLevel.orders.Front()

		qty := min(bid.remaining, ask.remaining)
		price := ob.policy(bid, ask)

		// qty is positive and bounded by both remainders, so neither
		// fill can fail and the volume counters stay consistent.
		_ = bid.ReduceBy(qty)
		_ = ask.ReduceBy(qty)
		bidLevel.volume -= qty
		askLevel.volume -= qty

		trades = append(trades, Trade{
			BuyOrderID:  bid.ID,
			SellOrderID: ask.ID,
			Price:       price,
			Qty:         qty,
			Timestamp:   ob.now(),
		})

		if bid.remaining == 0 {
			bidLevel.orders.PopFront()
			delete(ob.index, bid.ID)
			if bidLevel.orders.Len() == 0 {
				ob.bids.Remove(bidLevel.price)
			}
		}
		if ask.remaining == 0 {
			askLevel.orders.PopFront()
			delete(ob.index, ask.ID)
			if askLevel.orders.Len() == 0 {
				ob.asks.Remove(askLevel.price)
			}
		}
	}

	return trades
}

// RemoveOrder cancels a resident order by id, removing its level if it was
// the last order there.
func (ob *OrderBook) RemoveOrder(id string) error {
	ref, ok := ob.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}

	ladder := ob.ladder(ref.side)
	level, _ := ladder.Get(ref.price)

	for i := 0; i < level.orders.Len(); i++ {
		if level.orders.At(i).ID == id {
			removed := level.orders.Remove(i)
			level.volume -= removed.remaining
			break
		}
	}

	if level.orders.Len() == 0 {
		ladder.Remove(ref.price)
	}
	delete(ob.index, id)

	return nil
}

func (ob *OrderBook) BestBid() (float64, error) {
	if ob.bids.Empty() {
		return 0, fmt.Errorf("%w: no bids", ErrEmptyBook)
	}
	return ob.bids.Left().Key, nil
}

func (ob *OrderBook) BestAsk() (float64, error) {
	if ob.asks.Empty() {
		return 0, fmt.Errorf("%w: no asks", ErrEmptyBook)
	}
	return ob.asks.Left().Key, nil
}

// VolumeAtPrice sums the resident volume at one price across both sides.
func (ob *OrderBook) VolumeAtPrice(price float64) int64 {
	var total int64
	if level, ok := ob.bids.Get(price); ok {
		total += level.volume
	}
	if level, ok := ob.asks.Get(price); ok {
		total += level.volume
	}
	return total
}

// Snapshot returns every resident level: bids best to worst, then asks best
// to worst. Built from the per-level volume counters, so cost is O(levels),
// not O(orders).
func (ob *OrderBook) Snapshot() []LevelSnapshot {
	out := make([]LevelSnapshot, 0, ob.bids.Size()+ob.asks.Size())
	for it := ob.bids.Iterator(); it.Next(); {
		out = append(out, LevelSnapshot{Side: BUY, Price: it.Key(), Volume: it.Value().volume})
	}
	for it := ob.asks.Iterator(); it.Next(); {
		out = append(out, LevelSnapshot{Side: SELL, Price: it.Key(), Volume: it.Value().volume})
	}
	return out
}

// Order returns the resident order with the given id, if any.
func (ob *OrderBook) Order(id string) (*Order, bool) {
	ref, ok := ob.index[id]
	if !ok {
		return nil, false
	}
	level, _ := ob.ladder(ref.side).Get(ref.price)
	for i := 0; i < level.orders.Len(); i++ {
		if o := level.orders.At(i); o.ID == id {
			return o, true
		}
	}
	return nil, false
}

func (ob *OrderBook) ladder(s Side) *rbt.Tree[float64, *priceLevel] {
	if s == BUY {
		return ob.bids
	}
	return ob.asks
}
