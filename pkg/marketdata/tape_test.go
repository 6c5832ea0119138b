package marketdata

import (
	"errors"
	"testing"
	"time"

	"github.com/corefin/matchbook/pkg/book"
)

var base = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func trade(price float64, qty int64, at time.Time) book.Trade {
	return book.Trade{BuyOrderID: "B", SellOrderID: "S", Price: price, Qty: qty, Timestamp: at}
}

func TestLastTradePrice(t *testing.T) {
	tape := NewTape()

	if _, err := tape.LastTradePrice(); !errors.Is(err, ErrNoTrades) {
		t.Fatalf("empty tape: expected ErrNoTrades, got %v", err)
	}

	tape.RecordTrade(trade(10, 5, base))
	tape.RecordTrade(trade(12, 5, base.Add(time.Second)))

	price, err := tape.LastTradePrice()
	if err != nil {
		t.Fatalf("last price: %v", err)
	}
	if price != 12 {
		t.Errorf("expected 12, got %v", price)
	}
}

func TestRecentTrades(t *testing.T) {
	tape := NewTape()
	for i := 0; i < 5; i++ {
		tape.RecordTrade(trade(float64(10+i), 1, base.Add(time.Duration(i)*time.Second)))
	}

	if got := tape.RecentTrades(0); len(got) != 0 {
		t.Errorf("n=0: expected empty, got %d", len(got))
	}

	got := tape.RecentTrades(3)
	if len(got) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(got))
	}
	// chronological, not reversed
	if got[0].Price != 12 || got[2].Price != 14 {
		t.Errorf("expected chronological suffix [12 13 14], got %+v", got)
	}

	if got := tape.RecentTrades(100); len(got) != 5 {
		t.Errorf("n beyond length: expected 5, got %d", len(got))
	}

	// returned slice is a copy
	got[0].Price = -1
	if again := tape.RecentTrades(3); again[0].Price != 12 {
		t.Errorf("mutating the result leaked into the tape")
	}
}

func TestVolumeInLastMinute(t *testing.T) {
	now := base.Add(5 * time.Minute)
	tape := NewTape(WithClock(fixedClock(now)))

	tape.RecordTrade(trade(10, 7, now.Add(-90*time.Second))) // outside window
	tape.RecordTrade(trade(10, 3, now.Add(-30*time.Second))) // inside
	tape.RecordTrade(trade(10, 4, now.Add(-5*time.Second)))  // inside

	if got := tape.VolumeInLastMinute(); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestVolumeInLastMinuteEmpty(t *testing.T) {
	tape := NewTape(WithClock(fixedClock(base)))
	if got := tape.VolumeInLastMinute(); got != 0 {
		t.Errorf("expected 0 on empty tape, got %d", got)
	}
}

func TestVWAP(t *testing.T) {
	tape := NewTape()

	if _, err := tape.VWAP(3); !errors.Is(err, ErrNoTrades) {
		t.Fatalf("empty tape: expected ErrNoTrades, got %v", err)
	}

	tape.RecordTrade(trade(10, 5, base))
	tape.RecordTrade(trade(12, 10, base.Add(time.Second)))
	tape.RecordTrade(trade(11, 5, base.Add(2*time.Second)))

	got, err := tape.VWAP(3)
	if err != nil {
		t.Fatalf("vwap: %v", err)
	}
	if got != 11.25 {
		t.Errorf("expected 11.25, got %v", got)
	}

	// n beyond length clamps to the whole tape
	all, err := tape.VWAP(50)
	if err != nil || all != 11.25 {
		t.Errorf("expected 11.25 over whole tape, got %v (%v)", all, err)
	}

	// last two trades only
	last2, err := tape.VWAP(2)
	if err != nil {
		t.Fatalf("vwap(2): %v", err)
	}
	want := (12.0*10 + 11.0*5) / 15.0
	if last2 != want {
		t.Errorf("expected %v, got %v", want, last2)
	}

	if _, err := tape.VWAP(0); !errors.Is(err, ErrZeroVolume) {
		t.Errorf("n=0: expected ErrZeroVolume, got %v", err)
	}
}
