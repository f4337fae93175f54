package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlog/questlog-bot/internal/application/userlock"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE TASK COMMAND
// Marks a task done and applies the grant exactly once. The whole
// read-modify-write runs under the owner's lock so a double tap or a
// concurrent settlement cannot interleave.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteTaskCommand contains the data to complete a task.
type CompleteTaskCommand struct {
	Owner  shared.TelegramID
	TaskID string
}

// Validate validates the command.
func (c CompleteTaskCommand) Validate() error {
	if !c.Owner.IsValid() {
		return errors.New("complete_task: owner is required")
	}
	if c.TaskID == "" {
		return errors.New("complete_task: task_id is required")
	}
	return nil
}

// CompleteTaskResult contains the applied grant and the new state.
type CompleteTaskResult struct {
	Task    *task.Task
	User    *user.User
	Grant   user.Grant
	Outcome user.GrantOutcome

	// PepperApplied is true when the x1.5 multiplier was in effect.
	PepperApplied bool
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	userRepo  user.Repository
	taskRepo  task.Repository
	rewards   *user.RewardTable
	locks     *userlock.Registry
	reminders ReminderScheduler
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(
	userRepo user.Repository,
	taskRepo task.Repository,
	rewards *user.RewardTable,
	locks *userlock.Registry,
	reminders ReminderScheduler,
) *CompleteTaskHandler {
	return &CompleteTaskHandler{
		userRepo:  userRepo,
		taskRepo:  taskRepo,
		rewards:   rewards,
		locks:     locks,
		reminders: reminders,
	}
}

// Handle executes the command.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) (*CompleteTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_task: validation failed: %w", err)
	}

	defer h.locks.Lock(cmd.Owner)()

	t, err := h.taskRepo.GetByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != cmd.Owner {
		return nil, task.ErrTaskNotFound
	}

	if err := t.Complete(timeutil.Now()); err != nil {
		return nil, err
	}

	u, err := h.userRepo.GetByTelegramID(ctx, cmd.Owner)
	if err != nil {
		return nil, fmt.Errorf("complete_task: failed to get user: %w", err)
	}

	pepper := u.PepperMode
	grant := h.rewards.Award(t.Category, pepper)
	outcome := u.ApplyGrant(grant)

	if err := h.taskRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("complete_task: failed to save task: %w", err)
	}
	if err := h.userRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("complete_task: failed to save user: %w", err)
	}

	// A completed task no longer needs its reminder.
	h.reminders.CancelTask(t.ID)

	return &CompleteTaskResult{
		Task:          t,
		User:          u,
		Grant:         grant,
		Outcome:       outcome,
		PepperApplied: pepper,
	}, nil
}
