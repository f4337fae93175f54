// Package settlement implements the evening reckoning: penalties for
// unfinished tasks, streak accounting and pepper mode, with a per-user
// summary at the end of the run.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/questlog/questlog-bot/internal/application/notify"
	"github.com/questlog/questlog-bot/internal/application/userlock"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SETTLEMENT ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine settles one day for every known user. A run is idempotent:
// already-penalized tasks are skipped, and a perfect day is only counted
// into the streak once (guarded by LastPerfectDate).
type Engine struct {
	userRepo user.Repository
	taskRepo task.Repository
	rewards  *user.RewardTable
	locks    *userlock.Registry
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewEngine creates a settlement engine.
func NewEngine(
	userRepo user.Repository,
	taskRepo task.Repository,
	rewards *user.RewardTable,
	locks *userlock.Registry,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		userRepo: userRepo,
		taskRepo: taskRepo,
		rewards:  rewards,
		locks:    locks,
		notifier: notifier,
		logger:   logger.With("component", "settlement"),
	}
}

// Stats summarizes a settlement run.
type Stats struct {
	StartedAt        time.Time
	Duration         time.Duration
	UsersTotal       int
	UsersSettled     int
	UsersSkipped     int
	UsersFailed      int
	PenaltiesApplied int
	PerfectDays      int
	NotifyFailures   int
}

// UserOutcome describes what settlement did to a single user.
type UserOutcome struct {
	User       *user.User
	Done       int
	Total      int
	Failed     []*task.Task
	Perfect    bool
	HPLost     int
	PointsLost int
	ShieldUsed bool
	Penalized  int
}

// SettleDay settles every user for the given day. Individual failures
// are logged and counted, they never abort the batch.
func (e *Engine) SettleDay(ctx context.Context, day time.Time) (*Stats, error) {
	stats := &Stats{StartedAt: time.Now()}

	ids, err := e.userRepo.ListIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("settlement: failed to list users: %w", err)
	}
	stats.UsersTotal = len(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		outcome, err := e.settleUser(ctx, id, day)
		if err != nil {
			stats.UsersFailed++
			e.logger.Error("failed to settle user", "user_id", id, "error", err)
			continue
		}
		if outcome == nil {
			// No tasks today: the day does not count either way.
			stats.UsersSkipped++
			continue
		}

		stats.UsersSettled++
		stats.PenaltiesApplied += outcome.Penalized
		if outcome.Perfect {
			stats.PerfectDays++
		}

		if err := e.notifier.Send(ctx, id, e.summaryText(outcome)); err != nil {
			stats.NotifyFailures++
			e.logger.Warn("failed to deliver summary", "user_id", id, "error", err)
		}
	}

	stats.Duration = time.Since(stats.StartedAt)
	e.logger.Info("settlement finished",
		"day", timeutil.FormatDate(day),
		"settled", stats.UsersSettled,
		"skipped", stats.UsersSkipped,
		"failed", stats.UsersFailed,
		"penalties", stats.PenaltiesApplied,
		"perfect_days", stats.PerfectDays,
		"duration", stats.Duration,
	)
	return stats, nil
}

// settleUser settles one user under their lock. Returns nil when the user
// had no tasks for the day.
func (e *Engine) settleUser(ctx context.Context, id shared.TelegramID, day time.Time) (*UserOutcome, error) {
	defer e.locks.Lock(id)()

	tasks, err := e.taskRepo.ListByDay(ctx, id, day)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	u, err := e.userRepo.GetByTelegramID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	outcome := &UserOutcome{User: u, Total: len(tasks)}

	for _, t := range tasks {
		if t.Completed {
			outcome.Done++
			continue
		}
		outcome.Failed = append(outcome.Failed, t)
		if t.Penalized {
			// Already charged by an earlier run of the same day.
			continue
		}
		p := e.rewards.PenaltyFor(t.Category)
		res := u.ApplyPenalty(p)
		outcome.HPLost += res.HPLost
		outcome.PointsLost += res.PointsLost
		if res.ShieldConsumed {
			outcome.ShieldUsed = true
		}
	}

	penalized, err := e.taskRepo.MarkDayPenalized(ctx, id, day)
	if err != nil {
		return nil, fmt.Errorf("mark penalized: %w", err)
	}
	outcome.Penalized = penalized

	outcome.Perfect = outcome.Done == outcome.Total
	if outcome.Perfect {
		if u.LastPerfectDate == nil || !timeutil.IsSameDay(*u.LastPerfectDate, day) {
			u.RecordPerfectDay(timeutil.StartOfDay(day))
		}
	} else {
		u.RecordImperfectDay()
	}

	if err := e.userRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return outcome, nil
}

// summaryText builds the evening summary for one user.
func (e *Engine) summaryText(o *UserOutcome) string {
	var b strings.Builder

	b.WriteString("🌙 Итоги дня\n\n")
	fmt.Fprintf(&b, "Выполнено: %d из %d\n", o.Done, o.Total)

	if o.Perfect {
		b.WriteString("\n🏆 Идеальный день!\n")
		fmt.Fprintf(&b, "🔥 Серия: %d", o.User.PepperStreak)
		if o.User.PepperMode {
			b.WriteString("\n🌶 Режим перца активен: награды x1.5")
		}
	} else {
		b.WriteString("\n❌ Невыполненные:\n")
		for _, t := range o.Failed {
			fmt.Fprintf(&b, "%s %s\n", t.Category.Emoji(), t.Title)
		}
		b.WriteString("\n")
		if o.ShieldUsed {
			b.WriteString("🛡 Щит поглотил удар!\n")
		}
		if o.HPLost > 0 {
			fmt.Fprintf(&b, "💔 -%d HP\n", o.HPLost)
		}
		if o.PointsLost > 0 {
			fmt.Fprintf(&b, "💸 -%d очков\n", o.PointsLost)
		}
		if o.User.IsKnockedOut() {
			b.WriteString("😵 Ты в нокауте. Завтра новый день!\n")
		}
		b.WriteString("\nСерия прервана. Начнём заново завтра 💪")
	}

	fmt.Fprintf(&b, "\n\n❤️ HP: %d/100 | ⭐ Очки: %d | Уровень %d",
		o.User.HP, o.User.Points, o.User.Level)
	return b.String()
}
