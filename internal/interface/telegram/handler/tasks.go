package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/questlog/questlog-bot/internal/application/command"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
	"github.com/questlog/questlog-bot/internal/interface/telegram/presenter"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASKS HANDLER
// Shows today's ledger with per-task complete/delete buttons.
// ══════════════════════════════════════════════════════════════════════════════

// TasksHandler handles /tasks and the task callbacks.
type TasksHandler struct {
	taskRepo     task.Repository
	completeTask *command.CompleteTaskHandler
	deleteTask   *command.DeleteTaskHandler
	rateCache    *redis.RateCache
	logger       *slog.Logger
}

// NewTasksHandler creates a new TasksHandler. rateCache may be nil.
func NewTasksHandler(
	taskRepo task.Repository,
	completeTask *command.CompleteTaskHandler,
	deleteTask *command.DeleteTaskHandler,
	rateCache *redis.RateCache,
	logger *slog.Logger,
) *TasksHandler {
	return &TasksHandler{
		taskRepo:     taskRepo,
		completeTask: completeTask,
		deleteTask:   deleteTask,
		rateCache:    rateCache,
		logger:       logger.With("component", "tasks_handler"),
	}
}

// Handle processes the /tasks command.
func (h *TasksHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	return h.sendList(ctx, cmd.Client, cmd.UserID, cmd.ChatID)
}

// sendList renders today's ledger with its keyboard.
func (h *TasksHandler) sendList(ctx context.Context, client *telegram.Client, owner shared.TelegramID, chatID int64) error {
	tasks, err := h.taskRepo.ListByDay(ctx, owner, timeutil.Now())
	if err != nil {
		return fmt.Errorf("tasks: %w", err)
	}

	_, err = client.SendWithKeyboard(ctx, chatID, presenter.TaskList(tasks), taskKeyboard(tasks))
	return err
}

// refreshList re-renders the ledger in place of the callback's message, so
// the buttons always match the list. Telegram refuses to edit old messages,
// then a fresh list is sent instead.
func (h *TasksHandler) refreshList(ctx context.Context, cb tgiface.CallbackContext) error {
	tasks, err := h.taskRepo.ListByDay(ctx, cb.UserID, timeutil.Now())
	if err != nil {
		return fmt.Errorf("tasks: %w", err)
	}

	_, err = cb.Client.EditMessageText(ctx, cb.ChatID, cb.MessageID,
		presenter.TaskList(tasks), "MarkdownV2", taskKeyboard(tasks))
	if err != nil {
		h.logger.Warn("task list edit failed, sending a new one", "error", err)
		_, err = cb.Client.SendWithKeyboard(ctx, cb.ChatID, presenter.TaskList(tasks), taskKeyboard(tasks))
	}
	return err
}

// taskKeyboard builds complete/delete buttons for pending tasks.
func taskKeyboard(tasks []*task.Task) *telegram.InlineKeyboardMarkup {
	kb := telegram.NewKeyboard()
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		kb.Row(
			telegram.Button("✅ "+presenter.TaskLine(t), "task:done:"+t.ID),
			telegram.Button("🗑", "task:del:"+t.ID),
		)
	}
	return kb.Build()
}

// HandleComplete processes the "task:done:" callback.
func (h *TasksHandler) HandleComplete(ctx context.Context, cb tgiface.CallbackContext) error {
	res, err := h.completeTask.Handle(ctx, command.CompleteTaskCommand{
		Owner:  cb.UserID,
		TaskID: cb.Payload,
	})
	if err != nil {
		switch {
		case errors.Is(err, task.ErrAlreadyCompleted):
			_, serr := cb.Client.SendText(ctx, cb.ChatID, "Эта задача уже выполнена. 👍")
			return serr
		case errors.Is(err, task.ErrTaskNotFound):
			_, serr := cb.Client.SendText(ctx, cb.ChatID, "Задача не найдена. Обнови список: /tasks")
			return serr
		default:
			return fmt.Errorf("tasks: complete: %w", err)
		}
	}

	// The week's numbers changed; the displayed rate must not lag.
	if h.rateCache != nil {
		if err := h.rateCache.Invalidate(ctx, cb.UserID); err != nil {
			h.logger.Warn("rate cache invalidation failed", "error", err)
		}
	}

	text := fmt.Sprintf("✅ %s\n+%d XP, +%d очков", res.Task.Title, int(res.Grant.XP), int(res.Grant.Points))
	if res.PepperApplied {
		text += " 🌶"
	}
	if res.Grant.Heal > 0 {
		text += fmt.Sprintf(", +%d HP", int(res.Grant.Heal))
	}
	if res.Outcome.LevelsGained > 0 {
		text += fmt.Sprintf("\n🎉 Новый уровень: %d!", int(res.Outcome.NewLevel))
	}
	if _, err := cb.Client.SendText(ctx, cb.ChatID, text); err != nil {
		return err
	}

	return h.refreshList(ctx, cb)
}

// HandleDelete processes the "task:del:" callback.
func (h *TasksHandler) HandleDelete(ctx context.Context, cb tgiface.CallbackContext) error {
	err := h.deleteTask.Handle(ctx, command.DeleteTaskCommand{
		Owner:  cb.UserID,
		TaskID: cb.Payload,
	})
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			_, serr := cb.Client.SendText(ctx, cb.ChatID, "Задача уже удалена.")
			return serr
		}
		return fmt.Errorf("tasks: delete: %w", err)
	}

	return h.refreshList(ctx, cb)
}
