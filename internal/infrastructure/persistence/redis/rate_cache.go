package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/questlog/questlog-bot/internal/application/query"
	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEEKLY RATE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// RateCache caches computed weekly completion rates for display paths.
// The claim gate never reads it; that path always recomputes.
type RateCache struct {
	client *Client
}

// NewRateCache creates the cache.
func NewRateCache(client *Client) *RateCache {
	return &RateCache{client: client}
}

func rateKey(id shared.TelegramID) string {
	return fmt.Sprintf("%s%d", PrefixRate, int64(id))
}

// GetRate returns the cached rate, or query.ErrRateNotCached on miss.
func (c *RateCache) GetRate(ctx context.Context, id shared.TelegramID) (float64, error) {
	raw, err := c.client.rdb.Get(ctx, rateKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, query.ErrRateNotCached
		}
		return 0, fmt.Errorf("redis: get rate: %w", err)
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return rate, nil
}

// SetRate caches the rate for a short window.
func (c *RateCache) SetRate(ctx context.Context, id shared.TelegramID, rate float64) error {
	raw := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := c.client.rdb.Set(ctx, rateKey(id), raw, TTLRate).Err(); err != nil {
		return fmt.Errorf("redis: set rate: %w", err)
	}
	return nil
}

// Invalidate drops the cached rate, so the next display recomputes.
// Called after task completion changes the week's numbers.
func (c *RateCache) Invalidate(ctx context.Context, id shared.TelegramID) error {
	if err := c.client.rdb.Del(ctx, rateKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate rate: %w", err)
	}
	return nil
}
