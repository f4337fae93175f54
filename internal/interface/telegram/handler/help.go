package handler

import (
	"context"

	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// HELP HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// HelpHandler handles the /help command.
type HelpHandler struct{}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

// Handle processes the /help command.
func (h *HelpHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	text := "🎮 Как это работает\n\n" +
		"Каждый день ты составляешь список задач трёх типов:\n" +
		"🎯 Фокус — главное дело дня (+50 XP, +20 очков)\n" +
		"⚡ Важное — серьёзная задача (+20 XP, +10 очков)\n" +
		"✨ Желание — приятная мелочь (+5 XP, +2 очка, +5 HP)\n\n" +
		"В 21:00 подводятся итоги: невыполненные задачи бьют по здоровью и очкам.\n" +
		"Идеальный день — все задачи закрыты. Три идеальных дня подряд включают " +
		"🌶 режим перца: x1.5 к опыту, пока серия не прервётся.\n\n" +
		"🛡 Щит из магазина гасит первый штраф по здоровью.\n" +
		"🎁 Награды можно забирать в воскресенье, если за неделю выполнено больше 80% задач.\n\n" +
		commandList

	_, err := cmd.Client.SendText(ctx, cmd.ChatID, text)
	return err
}
