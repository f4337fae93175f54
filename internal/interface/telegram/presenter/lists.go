package presenter

import (
	"fmt"
	"strings"

	"github.com/questlog/questlog-bot/internal/domain/idea"
	"github.com/questlog/questlog-bot/internal/domain/reward"
	"github.com/questlog/questlog-bot/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK LIST
// ══════════════════════════════════════════════════════════════════════════════

// TaskList renders today's task ledger as MarkdownV2.
func TaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "📋 На сегодня задач нет\\.\nДобавь первую: /add"
	}

	var b strings.Builder
	b.WriteString("📋 *Задачи на сегодня*\n\n")
	for _, t := range tasks {
		mark := "▫️"
		if t.Completed {
			mark = "✅"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", mark, t.Category.Emoji(), Escape(t.Title)))
		if t.ReminderTime.IsSet() {
			b.WriteString(fmt.Sprintf(" 🔔 %s", Escape(t.ReminderTime.String())))
		}
		b.WriteString("\n")
	}

	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	b.WriteString(fmt.Sprintf("\nВыполнено: %d из %d", done, len(tasks)))
	return b.String()
}

// TaskLine renders one task for inline keyboard button labels.
func TaskLine(t *task.Task) string {
	title := t.Title
	const maxButtonTitle = 30
	if r := []rune(title); len(r) > maxButtonTitle {
		title = string(r[:maxButtonTitle]) + "…"
	}
	return fmt.Sprintf("%s %s", t.Category.Emoji(), title)
}

// ══════════════════════════════════════════════════════════════════════════════
// SHOP
// ══════════════════════════════════════════════════════════════════════════════

// Shop renders the consumable shop as MarkdownV2.
func Shop(points int) string {
	var b strings.Builder
	b.WriteString("🏪 *Магазин*\n\n")
	b.WriteString(fmt.Sprintf("🛡 Щит — *%d* очков\nПоглощает первый штраф по здоровью\\.\n\n", reward.ShieldCost))
	b.WriteString(fmt.Sprintf("🌶 Перец — *%d* очков\nВключает x1\\.5 к опыту до первого неидеального дня\\.\n\n", reward.PepperCost))
	b.WriteString(fmt.Sprintf("💰 У тебя: *%d* очков", points))
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARD LIST
// ══════════════════════════════════════════════════════════════════════════════

// RewardList renders unclaimed custom rewards as MarkdownV2.
func RewardList(rewards []*reward.Reward, points int) string {
	var b strings.Builder
	b.WriteString("🎁 *Твои награды*\n\n")

	if len(rewards) == 0 {
		b.WriteString("Список пуст\\. Придумай себе награду за хорошую неделю\\!\n")
	} else {
		for _, rw := range rewards {
			b.WriteString(fmt.Sprintf("• %s — *%d* очков\n", Escape(rw.Title), rw.Cost))
		}
	}

	b.WriteString(fmt.Sprintf("\n💰 У тебя: *%d* очков\n", points))
	b.WriteString("Получить награду можно в воскресенье, если за неделю выполнено больше 80% задач\\.")
	return b.String()
}

// RewardLine renders one reward for inline keyboard button labels.
func RewardLine(rw *reward.Reward) string {
	title := rw.Title
	const maxButtonTitle = 25
	if r := []rune(title); len(r) > maxButtonTitle {
		title = string(r[:maxButtonTitle]) + "…"
	}
	return fmt.Sprintf("🎁 %s (%d)", title, rw.Cost)
}

// ══════════════════════════════════════════════════════════════════════════════
// IDEA BOX
// ══════════════════════════════════════════════════════════════════════════════

// CategoryList renders the idea box categories as MarkdownV2.
func CategoryList(categories []*idea.Category) string {
	if len(categories) == 0 {
		return "💡 Копилка идей пуста\\.\nСоздай первую категорию\\!"
	}

	var b strings.Builder
	b.WriteString("💡 *Копилка идей*\n\nВыбери категорию:")
	return b.String()
}

// IdeaList renders the ideas of one category as MarkdownV2.
func IdeaList(c *idea.Category, ideas []*idea.Idea) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s*\n\n", c.Emoji, Escape(c.Name)))

	if len(ideas) == 0 {
		b.WriteString("Идей пока нет\\.")
		return b.String()
	}

	for _, i := range ideas {
		b.WriteString(fmt.Sprintf("%s %s\n", i.Status.Emoji(), Escape(i.Title)))
	}
	b.WriteString("\n🔵 новая · 🟡 в работе · 🟢 готово")
	return b.String()
}

// CategoryLine renders one category for inline keyboard button labels.
func CategoryLine(c *idea.Category) string {
	return fmt.Sprintf("%s %s", c.Emoji, c.Name)
}

// IdeaLine renders one idea for inline keyboard button labels.
func IdeaLine(i *idea.Idea) string {
	title := i.Title
	const maxButtonTitle = 30
	if r := []rune(title); len(r) > maxButtonTitle {
		title = string(r[:maxButtonTitle]) + "…"
	}
	return fmt.Sprintf("%s %s", i.Status.Emoji(), title)
}
