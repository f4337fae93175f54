package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE TASK COMMAND
// Adds a task to today's ledger and, when a reminder time is given,
// schedules the one-shot reminder for it.
// ══════════════════════════════════════════════════════════════════════════════

// ReminderScheduler is the slice of the reminder service the task
// commands need.
type ReminderScheduler interface {
	// ScheduleTask schedules (or replaces) the reminder for the task.
	// Tasks without a reminder time are ignored.
	ScheduleTask(t *task.Task)

	// CancelTask drops the pending reminder for the task, if any.
	CancelTask(taskID string)
}

// CreateTaskCommand contains the data to create a task.
type CreateTaskCommand struct {
	Owner    shared.TelegramID
	Title    string
	Category task.Category

	// ReminderRaw is the user's reminder time input ("16:00", "16.00",
	// "16 00") or empty for no reminder.
	ReminderRaw string
}

// Validate validates the command.
func (c CreateTaskCommand) Validate() error {
	if !c.Owner.IsValid() {
		return errors.New("create_task: owner is required")
	}
	if !c.Category.IsValid() {
		return task.ErrInvalidCategory
	}
	return nil
}

// CreateTaskResult contains the created task.
type CreateTaskResult struct {
	Task *task.Task

	// ReminderScheduled is true when a reminder was actually queued:
	// a reminder time in the past is accepted but never fires.
	ReminderScheduled bool
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo  task.Repository
	reminders ReminderScheduler
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, reminders ReminderScheduler) *CreateTaskHandler {
	return &CreateTaskHandler{taskRepo: taskRepo, reminders: reminders}
}

// Handle executes the command.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_task: validation failed: %w", err)
	}

	var reminderTime task.ReminderTime
	if cmd.ReminderRaw != "" {
		parsed, err := task.ParseReminderTime(cmd.ReminderRaw)
		if err != nil {
			return nil, err
		}
		reminderTime = parsed
	}

	now := timeutil.Now()
	t, err := task.NewTask(task.NewTaskParams{
		ID:           uuid.NewString(),
		OwnerID:      cmd.Owner,
		Title:        cmd.Title,
		Category:     cmd.Category,
		ReminderTime: reminderTime,
		Day:          now,
	})
	if err != nil {
		return nil, err
	}

	if err := h.taskRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create_task: failed to save task: %w", err)
	}

	scheduled := false
	if due, ok := t.ReminderDue(); ok && due.After(now) {
		h.reminders.ScheduleTask(t)
		scheduled = true
	}

	return &CreateTaskResult{Task: t, ReminderScheduled: scheduled}, nil
}
