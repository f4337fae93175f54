package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE TASK COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// DeleteTaskCommand contains the data to delete a task.
type DeleteTaskCommand struct {
	Owner  shared.TelegramID
	TaskID string
}

// Validate validates the command.
func (c DeleteTaskCommand) Validate() error {
	if !c.Owner.IsValid() {
		return errors.New("delete_task: owner is required")
	}
	if c.TaskID == "" {
		return errors.New("delete_task: task_id is required")
	}
	return nil
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo  task.Repository
	reminders ReminderScheduler
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, reminders ReminderScheduler) *DeleteTaskHandler {
	return &DeleteTaskHandler{taskRepo: taskRepo, reminders: reminders}
}

// Handle executes the command.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("delete_task: validation failed: %w", err)
	}

	if err := h.taskRepo.Delete(ctx, cmd.Owner, cmd.TaskID); err != nil {
		return err
	}

	h.reminders.CancelTask(cmd.TaskID)
	return nil
}
