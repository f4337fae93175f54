package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlog/questlog-bot/internal/application/command"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD TASK FLOW
// Three-step dialog: title (text) → category (inline keyboard) →
// reminder time (text or skip button).
// ══════════════════════════════════════════════════════════════════════════════

// Dialog steps of the add-task flow.
const (
	stepTaskTitle    = "add_task:title"
	stepTaskReminder = "add_task:reminder"
)

// AddTaskHandler handles the /add command and its dialog.
type AddTaskHandler struct {
	createTask *command.CreateTaskHandler
	dialogs    *redis.DialogStore
}

// NewAddTaskHandler creates a new AddTaskHandler.
func NewAddTaskHandler(createTask *command.CreateTaskHandler, dialogs *redis.DialogStore) *AddTaskHandler {
	return &AddTaskHandler{createTask: createTask, dialogs: dialogs}
}

// Handle processes the /add command: it opens the dialog.
func (h *AddTaskHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	d := &redis.Dialog{Step: stepTaskTitle}
	if err := h.dialogs.Put(ctx, cmd.UserID, d); err != nil {
		return fmt.Errorf("add_task: %w", err)
	}

	_, err := cmd.Client.SendText(ctx, cmd.ChatID, "📝 Что нужно сделать?")
	return err
}

// HandleDialog processes the text steps of the flow.
func (h *AddTaskHandler) HandleDialog(ctx context.Context, d tgiface.DialogContext) error {
	switch d.Dialog.Step {
	case stepTaskTitle:
		return h.handleTitle(ctx, d)
	case stepTaskReminder:
		return h.handleReminder(ctx, d)
	default:
		return nil
	}
}

// handleTitle stores the title and asks for the category.
func (h *AddTaskHandler) handleTitle(ctx context.Context, d tgiface.DialogContext) error {
	if d.Text == "" {
		_, err := d.Client.SendText(ctx, d.ChatID, "Название не может быть пустым. Попробуй ещё раз.")
		return err
	}

	d.Dialog.Set("title", d.Text)
	d.Dialog.Step = "add_task:category"
	if err := h.dialogs.Put(ctx, d.UserID, d.Dialog); err != nil {
		return fmt.Errorf("add_task: %w", err)
	}

	keyboard := telegram.NewKeyboard().
		Row(telegram.Button("🎯 Фокус", "task:cat:focus")).
		Row(telegram.Button("⚡ Важное", "task:cat:important")).
		Row(telegram.Button("✨ Желание", "task:cat:wish")).
		Build()

	_, err := d.Client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      d.ChatID,
		Text:        "Какого типа эта задача?",
		ReplyMarkup: keyboard,
	})
	return err
}

// HandleCategory processes the "task:cat:" callback.
func (h *AddTaskHandler) HandleCategory(ctx context.Context, cb tgiface.CallbackContext) error {
	d, err := h.dialogs.Get(ctx, cb.UserID)
	if err != nil {
		if errors.Is(err, redis.ErrNoDialog) {
			_, err := cb.Client.SendText(ctx, cb.ChatID, "Диалог уже завершён. Начни заново: /add")
			return err
		}
		return fmt.Errorf("add_task: %w", err)
	}
	if d.Step != "add_task:category" {
		return nil
	}

	category := task.Category(cb.Payload)
	if !category.IsValid() {
		return fmt.Errorf("add_task: bad category payload: %q", cb.Payload)
	}

	d.Set("category", string(category))
	d.Step = stepTaskReminder
	if err := h.dialogs.Put(ctx, cb.UserID, d); err != nil {
		return fmt.Errorf("add_task: %w", err)
	}

	keyboard := telegram.NewKeyboard().
		Row(telegram.Button("Без напоминания", "task:noremind")).
		Build()

	_, err = cb.Client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:      cb.ChatID,
		Text:        "🔔 Во сколько напомнить? Напиши время, например 16:00.",
		ReplyMarkup: keyboard,
	})
	return err
}

// handleReminder finishes the flow with a reminder time.
func (h *AddTaskHandler) handleReminder(ctx context.Context, d tgiface.DialogContext) error {
	if _, err := task.ParseReminderTime(d.Text); err != nil {
		_, serr := d.Client.SendText(ctx, d.ChatID,
			"Не понял время. 🤔 Напиши в формате ЧЧ:ММ, например 16:00, или /cancel.")
		return serr
	}
	return h.finish(ctx, d.UserID, d.ChatID, d.Client, d.Dialog, d.Text)
}

// HandleSkipReminder processes the "task:noremind" callback.
func (h *AddTaskHandler) HandleSkipReminder(ctx context.Context, cb tgiface.CallbackContext) error {
	d, err := h.dialogs.Get(ctx, cb.UserID)
	if err != nil {
		if errors.Is(err, redis.ErrNoDialog) {
			return nil
		}
		return fmt.Errorf("add_task: %w", err)
	}
	if d.Step != stepTaskReminder {
		return nil
	}
	return h.finish(ctx, cb.UserID, cb.ChatID, cb.Client, d, "")
}

// finish creates the task and closes the dialog.
func (h *AddTaskHandler) finish(
	ctx context.Context,
	userID shared.TelegramID,
	chatID int64,
	client *telegram.Client,
	d *redis.Dialog,
	reminderRaw string,
) error {
	res, err := h.createTask.Handle(ctx, command.CreateTaskCommand{
		Owner:       userID,
		Title:       d.Value("title"),
		Category:    task.Category(d.Value("category")),
		ReminderRaw: reminderRaw,
	})
	if err != nil {
		if errors.Is(err, task.ErrTitleTooLong) {
			_, serr := client.SendText(ctx, chatID, "Слишком длинное название (максимум 200 символов).")
			return serr
		}
		return fmt.Errorf("add_task: %w", err)
	}

	if err := h.dialogs.Clear(ctx, userID); err != nil {
		return fmt.Errorf("add_task: %w", err)
	}

	t := res.Task
	text := fmt.Sprintf("Записал: %s %s", t.Category.Emoji(), t.Title)
	if res.ReminderScheduled {
		text += fmt.Sprintf("\n🔔 Напомню в %s.", t.ReminderTime)
	} else if t.ReminderTime.IsSet() {
		text += "\n🔔 Это время уже прошло, напоминания не будет."
	}
	text += "\nВесь список: /tasks"

	_, err = client.SendText(ctx, chatID, text)
	return err
}
