package marketdata

import (
	"errors"
	"time"

	"github.com/corefin/matchbook/pkg/book"
)

var (
	ErrNoTrades   = errors.New("no trades recorded")
	ErrZeroVolume = errors.New("zero traded volume")
)

// Clock supplies "now" for windowed queries. Injectable so the one-minute
// window and VWAP paths test deterministically.
type Clock func() time.Time

type Option func(*Tape)

func WithClock(c Clock) Option {
	return func(t *Tape) { t.now = c }
}

// Tape is the append-only trade history of one symbol. History is never
// deleted; bounded retrieval happens through suffix and windowed queries.
// Like the book, the tape expects a single sequential owner and takes no
// locks.
type Tape struct {
	now    Clock
	trades []book.Trade
}

func NewTape(opts ...Option) *Tape {
	t := &Tape{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tape) RecordTrade(tr book.Trade) {
	t.trades = append(t.trades, tr)
}

func (t *Tape) Len() int {
	return len(t.trades)
}

func (t *Tape) LastTradePrice() (float64, error) {
	if len(t.trades) == 0 {
		return 0, ErrNoTrades
	}
	return t.trades[len(t.trades)-1].Price, nil
}

// RecentTrades returns the last min(n, length) trades in chronological
// order. The result is a copy; mutating it never touches the tape.
func (t *Tape) RecentTrades(n int) []book.Trade {
	if n < 0 {
		n = 0
	}
	if n > len(t.trades) {
		n = len(t.trades)
	}
	out := make([]book.Trade, n)
	copy(out, t.trades[len(t.trades)-n:])
	return out
}

// VolumeInLastMinute sums executed quantity over trades within 60 seconds
// of now. Trades are appended in non-decreasing timestamp order, so the
// backward scan stops at the first trade outside the window.
func (t *Tape) VolumeInLastMinute() int64 {
	cutoff := t.now().Add(-time.Minute)

	var total int64
	for i := len(t.trades) - 1; i >= 0; i-- {
		if t.trades[i].Timestamp.Before(cutoff) {
			break
		}
		total += t.trades[i].Qty
	}
	return total
}

// VWAP computes the volume-weighted average price over the last
// min(n, length) trades.
func (t *Tape) VWAP(n int) (float64, error) {
	if len(t.trades) == 0 {
		return 0, ErrNoTrades
	}
	if n < 0 {
		n = 0
	}
	if n > len(t.trades) {
		n = len(t.trades)
	}

	var notional float64
	var volume int64
	for _, tr := range t.trades[len(t.trades)-n:] {
		notional += tr.Price * float64(tr.Qty)
		volume += tr.Qty
	}
	if volume == 0 {
		return 0, ErrZeroVolume
	}
	return notional / float64(volume), nil
}
