// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEEKLY COMPLETION RATE QUERY
// Completion percentage over the trailing 7 days (today included).
// Gates the Sunday reward claim and shows up in the profile.
// ══════════════════════════════════════════════════════════════════════════════

// RateCache is a small read-through cache for computed rates.
// Implemented on Redis in infrastructure; a nil cache disables caching.
type RateCache interface {
	GetRate(ctx context.Context, id shared.TelegramID) (float64, error)
	SetRate(ctx context.Context, id shared.TelegramID, rate float64) error
}

// ErrRateNotCached is returned by a RateCache on miss.
var ErrRateNotCached = errors.New("rate not cached")

// WeeklyRateQuery computes the weekly completion rate.
type WeeklyRateQuery struct {
	taskRepo task.Repository
	cache    RateCache
	logger   *slog.Logger
}

// NewWeeklyRateQuery creates a new WeeklyRateQuery.
func NewWeeklyRateQuery(taskRepo task.Repository, cache RateCache, logger *slog.Logger) *WeeklyRateQuery {
	return &WeeklyRateQuery{
		taskRepo: taskRepo,
		cache:    cache,
		logger:   logger.With("component", "weekly_rate_query"),
	}
}

// WeeklyRateResult contains the computed rate and its inputs.
type WeeklyRateResult struct {
	Done  int
	Total int

	// Rate is the percentage 0..100. Zero when there were no tasks.
	Rate float64
}

// Get returns the rate, preferring the cache. Used for display.
func (q *WeeklyRateQuery) Get(ctx context.Context, owner shared.TelegramID) (*WeeklyRateResult, error) {
	if q.cache != nil {
		if rate, err := q.cache.GetRate(ctx, owner); err == nil {
			return &WeeklyRateResult{Rate: rate}, nil
		} else if !errors.Is(err, ErrRateNotCached) {
			q.logger.Warn("rate cache read failed", "error", err)
		}
	}

	res, err := q.GetFresh(ctx, owner)
	if err != nil {
		return nil, err
	}

	if q.cache != nil {
		if err := q.cache.SetRate(ctx, owner, res.Rate); err != nil {
			q.logger.Warn("rate cache write failed", "error", err)
		}
	}
	return res, nil
}

// GetFresh recomputes the rate from the ledger, bypassing the cache.
// The Sunday claim gate always uses this path.
func (q *WeeklyRateQuery) GetFresh(ctx context.Context, owner shared.TelegramID) (*WeeklyRateResult, error) {
	now := timeutil.Now()
	from := timeutil.StartOfDay(now).AddDate(0, 0, -6)
	to := timeutil.EndOfDay(now)

	done, total, err := q.taskRepo.CompletionStats(ctx, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("weekly_rate: %w", err)
	}

	res := &WeeklyRateResult{Done: done, Total: total}
	if total > 0 {
		res.Rate = float64(done) / float64(total) * 100
	}
	return res, nil
}
