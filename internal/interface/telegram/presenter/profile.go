package presenter

import (
	"fmt"
	"strings"

	"github.com/questlog/questlog-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE CARD
// ══════════════════════════════════════════════════════════════════════════════

// ProfileCard renders the player's profile as MarkdownV2.
func ProfileCard(u *user.User, weeklyRate float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎮 *%s*\n\n", Escape(u.Username)))
	b.WriteString(fmt.Sprintf("⭐ Уровень: *%d*\n", int(u.Level)))
	threshold := u.Level.Threshold()
	b.WriteString(fmt.Sprintf("✨ Опыт: %s %d/%d\n",
		Escape(Bar(int(u.XP), threshold)), int(u.XP), threshold))
	b.WriteString(fmt.Sprintf("❤️ Здоровье: %s %d/%d\n",
		Escape(Bar(int(u.HP), user.MaxHP)), int(u.HP), user.MaxHP))
	b.WriteString(fmt.Sprintf("💰 Очки: *%d*\n", int(u.Points)))

	b.WriteString("\n")
	if u.ShieldActive {
		b.WriteString("🛡 Щит: активен\n")
	}
	if u.PepperMode {
		b.WriteString("🌶 Режим перца: x1\\.5 к опыту\n")
	}
	if u.PepperStreak > 0 {
		b.WriteString(fmt.Sprintf("🔥 Серия идеальных дней: %d\n", u.PepperStreak))
	}
	b.WriteString(fmt.Sprintf("📊 Выполнение за неделю: %s%%\n", Escape(fmt.Sprintf("%.0f", weeklyRate))))

	if u.IsKnockedOut() {
		b.WriteString("\n💀 Ты в нокауте\\. Выполняй задачи, чтобы восстановиться\\!\n")
	}

	return b.String()
}
