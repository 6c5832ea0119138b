package engine

import (
	"context"
	"sync"
	"time"

	"github.com/corefin/matchbook/pkg/book"
	"github.com/corefin/matchbook/pkg/engine/model"
	"github.com/corefin/matchbook/pkg/marketdata"
)

// session is the single sequential owner of one symbol's book and tape.
// Every operation, reads included, runs on the session goroutine; the book
// and tape themselves stay lock-free.
type session struct {
	symbol string
	book   *book.OrderBook
	tape   *marketdata.Tape
	orders map[string]*model.Order

	cmds chan func()
	quit chan struct{}
	once sync.Once
}

func newSession(symbol string, policy book.PricePolicy, clock func() time.Time, queueSize int) *session {
	s := &session{
		symbol: symbol,
		book:   book.New(symbol, book.WithPricePolicy(policy), book.WithClock(clock)),
		tape:   marketdata.NewTape(marketdata.WithClock(clock)),
		orders: make(map[string]*model.Order),
		cmds:   make(chan func(), queueSize),
		quit:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *session) run() {
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.quit:
			return
		}
	}
}

func (s *session) stop() {
	s.once.Do(func() { close(s.quit) })
}

// do runs fn on the session goroutine and waits for it to finish. When the
// context expires after the command was enqueued, the command may still
// execute; the caller only loses the wait.
func (s *session) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})

	select {
	case s.cmds <- func() { fn(); close(done) }:
	case <-s.quit:
		return ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-s.quit:
		return ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
