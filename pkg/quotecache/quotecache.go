// Package quotecache keeps the latest per-symbol quote in Redis so read
// traffic never touches a matching session.
package quotecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corefin/matchbook/pkg/engine"
)

var ErrQuoteNotFound = errors.New("quote not found")

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}

// OnQuote implements the engine's QuoteSink.
func (c *Cache) OnQuote(ctx context.Context, quote *engine.Quote) {
	_ = c.Put(ctx, quote)
}

func (c *Cache) Put(ctx context.Context, quote *engine.Quote) error {
	b, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(quote.Symbol), b, c.ttl).Err()
}

func (c *Cache) Get(ctx context.Context, symbol string) (*engine.Quote, error) {
	b, err := c.rdb.Get(ctx, key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, symbol)
	}
	if err != nil {
		return nil, err
	}

	var quote engine.Quote
	if err := json.Unmarshal(b, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}
