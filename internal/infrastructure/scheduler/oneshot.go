package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ONE-SHOT QUEUE
// Keyed one-shot timers for task reminders. Scheduling an existing key
// replaces the pending timer; a fire that arrives later than the misfire
// grace is dropped instead of firing stale.
// ══════════════════════════════════════════════════════════════════════════════

// OneShotQueue manages keyed one-shot callbacks.
type OneShotQueue struct {
	mu      sync.Mutex
	logger  *slog.Logger
	grace   time.Duration
	pending map[string]*oneShot

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// oneShot is a single pending timer.
type oneShot struct {
	key   string
	at    time.Time
	timer *time.Timer
}

// OneShotConfig contains configuration for the queue.
type OneShotConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// MisfireGrace is how late a fire may run before being dropped.
	// Zero disables the check.
	MisfireGrace time.Duration
}

// NewOneShotQueue creates an empty queue.
func NewOneShotQueue(config OneShotConfig) *OneShotQueue {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &OneShotQueue{
		logger:  config.Logger.With("component", "oneshot_queue"),
		grace:   config.MisfireGrace,
		pending: make(map[string]*oneShot),
	}
}

// Start binds the queue to a lifecycle context. Must be called before
// ScheduleAt.
func (q *OneShotQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.started = true
}

// Stop cancels every pending timer and waits for in-flight callbacks.
func (q *OneShotQueue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	for key, p := range q.pending {
		p.timer.Stop()
		delete(q.pending, key)
	}
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("one-shot queue stopped")
}

// ScheduleAt queues fn to run at the given time, replacing any pending
// timer with the same key. Times not in the future are rejected.
func (q *OneShotQueue) ScheduleAt(key string, at time.Time, fn func(ctx context.Context)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		q.logger.Warn("schedule on stopped queue", "key", key)
		return false
	}

	delay := time.Until(at)
	if delay <= 0 {
		q.logger.Info("skipping past-due one-shot", "key", key, "at", at.Format(time.RFC3339))
		return false
	}

	if prev, ok := q.pending[key]; ok {
		prev.timer.Stop()
		q.logger.Info("replacing pending one-shot", "key", key)
	}

	p := &oneShot{key: key, at: at}
	p.timer = time.AfterFunc(delay, func() {
		q.fire(p, fn)
	})
	q.pending[key] = p

	q.logger.Info("one-shot scheduled", "key", key, "at", at.Format(time.RFC3339))
	return true
}

// Cancel drops a pending timer. Returns false if the key is not pending.
func (q *OneShotQueue) Cancel(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	p, ok := q.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(q.pending, key)
	q.logger.Info("one-shot cancelled", "key", key)
	return true
}

// Pending returns the number of queued timers.
func (q *OneShotQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// IsPending reports whether the key has a queued timer.
func (q *OneShotQueue) IsPending(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.pending[key]
	return ok
}

// fire runs a due timer callback.
func (q *OneShotQueue) fire(p *oneShot, fn func(ctx context.Context)) {
	q.mu.Lock()
	if !q.started || q.pending[p.key] != p {
		// Replaced or cancelled between firing and locking.
		q.mu.Unlock()
		return
	}
	delete(q.pending, p.key)
	ctx := q.ctx
	q.mu.Unlock()

	if q.grace > 0 {
		if late := time.Since(p.at); late > q.grace {
			q.logger.Warn("one-shot misfired, dropping",
				"key", p.key,
				"scheduled", p.at.Format(time.RFC3339),
				"late_by", late.String(),
			)
			return
		}
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				q.logger.Error("one-shot panicked", "key", p.key, "panic", fmt.Sprint(r))
			}
		}()
		fn(ctx)
	}()
}
