// Package handler contains Telegram command, callback, and dialog
// handlers. Each handler follows the pattern: parse input → call the
// application layer → format the response.
package handler

import (
	"context"
	"fmt"

	"github.com/questlog/questlog-bot/internal/application/command"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// Registers the player on first contact and shows the command list.
// ══════════════════════════════════════════════════════════════════════════════

// StartHandler handles the /start command.
type StartHandler struct {
	ensureUser *command.EnsureUserHandler
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(ensureUser *command.EnsureUserHandler) *StartHandler {
	return &StartHandler{ensureUser: ensureUser}
}

// Handle processes the /start command.
func (h *StartHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	res, err := h.ensureUser.Handle(ctx, command.EnsureUserCommand{
		TelegramID: cmd.UserID,
		Username:   cmd.Username,
	})
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	var text string
	if res.Created {
		text = fmt.Sprintf(
			"Привет, %s! 🎮\n\n"+
				"Это твой личный квест-лог: каждый день — уровень, задачи — квесты.\n"+
				"Выполняй их и получай опыт и очки, пропускай — теряй здоровье.\n\n"+
				"Начни с /add — добавь первую задачу на сегодня.",
			res.User.Username,
		)
	} else {
		text = fmt.Sprintf("С возвращением, %s! 👋\nТвои задачи на сегодня: /tasks", res.User.Username)
	}

	text += "\n\n" + commandList

	_, err = cmd.Client.SendText(ctx, cmd.ChatID, text)
	return err
}

const commandList = "Команды:\n" +
	"/add — добавить задачу\n" +
	"/tasks — задачи на сегодня\n" +
	"/profile — профиль и прогресс\n" +
	"/shop — магазин (щит, перец)\n" +
	"/rewards — твои награды\n" +
	"/ideas — копилка идей\n" +
	"/cancel — прервать диалог\n" +
	"/help — помощь"
