// Package reminder schedules one-shot task reminders and restores them
// after a restart. A reminder is advisory: by fire time the task may be
// done or gone, so the service re-reads the ledger before notifying.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/questlog/questlog-bot/internal/application/notify"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// Queue is the slice of the one-shot scheduler the service needs.
type Queue interface {
	// ScheduleAt queues fn at the given time under the key, replacing any
	// pending entry with the same key. Past times are rejected.
	ScheduleAt(key string, at time.Time, fn func(ctx context.Context)) bool

	// Cancel drops the pending entry for the key.
	Cancel(key string) bool
}

// keyPrefix namespaces reminder keys inside the shared one-shot queue.
const keyPrefix = "reminder:"

// Key returns the queue key for a task's reminder. One task has at most
// one pending reminder: scheduling again replaces the old one.
func Key(taskID string) string {
	return keyPrefix + taskID
}

// Service schedules, cancels and restores task reminders.
type Service struct {
	queue    Queue
	userRepo user.Repository
	taskRepo task.Repository
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService creates a reminder service.
func NewService(
	queue Queue,
	userRepo user.Repository,
	taskRepo task.Repository,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		queue:    queue,
		userRepo: userRepo,
		taskRepo: taskRepo,
		notifier: notifier,
		logger:   logger.With("component", "reminder"),
	}
}

// ScheduleTask queues the reminder for a task. Tasks without a reminder
// time are ignored; past-due times are rejected by the queue and logged.
func (s *Service) ScheduleTask(t *task.Task) {
	due, ok := t.ReminderDue()
	if !ok {
		return
	}

	taskID := t.ID
	s.queue.ScheduleAt(Key(taskID), due, func(ctx context.Context) {
		s.fire(ctx, taskID)
	})
}

// CancelTask drops the pending reminder for the task, if any.
func (s *Service) CancelTask(taskID string) {
	s.queue.Cancel(Key(taskID))
}

// fire delivers one reminder. The task is re-read first: a deleted or
// already-completed task produces no message.
func (s *Service) fire(ctx context.Context, taskID string) {
	t, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			s.logger.Info("reminder fired for deleted task, skipping", "task_id", taskID)
			return
		}
		s.logger.Error("reminder fired but task lookup failed", "task_id", taskID, "error", err)
		return
	}
	if t.Completed {
		s.logger.Info("reminder fired for completed task, skipping", "task_id", taskID)
		return
	}

	text := fmt.Sprintf("🔔 Напоминание!\n\n%s %s", t.Category.Emoji(), t.Title)
	if err := s.notifier.Send(ctx, t.OwnerID, text); err != nil {
		s.logger.Warn("failed to deliver reminder", "task_id", taskID, "user_id", t.OwnerID, "error", err)
		return
	}
	s.logger.Info("reminder delivered", "task_id", taskID, "user_id", t.OwnerID)
}

// RestoreAll re-schedules pending reminders for today's tasks of every
// user. Called once on startup: timers do not survive a restart, the
// ledger does. Only reminders still in the future are queued.
func (s *Service) RestoreAll(ctx context.Context) (int, error) {
	ids, err := s.userRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("reminder: failed to list users: %w", err)
	}

	now := timeutil.Now()
	restored := 0

	for _, id := range ids {
		tasks, err := s.taskRepo.ListByDay(ctx, id, now)
		if err != nil {
			s.logger.Error("failed to list tasks during restore", "user_id", id, "error", err)
			continue
		}
		for _, t := range tasks {
			if t.Completed {
				continue
			}
			due, ok := t.ReminderDue()
			if !ok || !due.After(now) {
				continue
			}
			taskID := t.ID
			if s.queue.ScheduleAt(Key(taskID), due, func(ctx context.Context) { s.fire(ctx, taskID) }) {
				restored++
			}
		}
	}

	s.logger.Info("reminders restored", "count", restored)
	return restored, nil
}
