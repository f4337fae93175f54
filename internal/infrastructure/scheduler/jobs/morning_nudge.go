package jobs

import (
	"context"
	"log/slog"

	"github.com/questlog/questlog-bot/internal/application/notify"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MORNING NUDGE JOB
// Every half hour from 07:00 to 12:30 pokes users who still have an empty
// day plan. Users with at least one task are left alone.
// ══════════════════════════════════════════════════════════════════════════════

// MorningNudgeJob reminds users to plan their day.
type MorningNudgeJob struct {
	userRepo user.Repository
	taskRepo task.Repository
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewMorningNudgeJob creates the job.
func NewMorningNudgeJob(
	userRepo user.Repository,
	taskRepo task.Repository,
	notifier notify.Notifier,
	logger *slog.Logger,
) *MorningNudgeJob {
	return &MorningNudgeJob{
		userRepo: userRepo,
		taskRepo: taskRepo,
		notifier: notifier,
		logger:   logger.With("job", "morning_nudge"),
	}
}

// Name implements scheduler.Job.
func (j *MorningNudgeJob) Name() string {
	return "morning_nudge"
}

// Description implements scheduler.Job.
func (j *MorningNudgeJob) Description() string {
	return "Утреннее напоминание спланировать день"
}

// Run implements scheduler.Job.
func (j *MorningNudgeJob) Run(ctx context.Context) error {
	ids, err := j.userRepo.ListIDs(ctx)
	if err != nil {
		return err
	}

	now := timeutil.Now()
	nudged := 0

	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		tasks, err := j.taskRepo.ListByDay(ctx, id, now)
		if err != nil {
			j.logger.Error("failed to list tasks", "user_id", id, "error", err)
			continue
		}
		if len(tasks) > 0 {
			continue
		}

		text := "🌅 Доброе утро, герой!\n\n" +
			"План на сегодня пуст. Добавь задачи командой /add - " +
			"без плана день пройдёт без опыта и очков."
		if err := j.notifier.Send(ctx, id, text); err != nil {
			j.logger.Warn("failed to deliver nudge", "user_id", id, "error", err)
			continue
		}
		nudged++
	}

	j.logger.Info("morning nudge done", "nudged", nudged, "users", len(ids))
	return nil
}
