// Package presenter formats domain state into Telegram MarkdownV2
// messages: the profile card, task lists, the shop, reward and idea
// lists.
package presenter

import (
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARKDOWNV2 ESCAPING
// ══════════════════════════════════════════════════════════════════════════════

// markdownV2Special are the characters MarkdownV2 requires escaped in
// plain text.
const markdownV2Special = `_*[]()~` + "`" + `>#+-=|{}.!`

// Escape escapes user-provided text for safe MarkdownV2 interpolation.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS BARS
// ══════════════════════════════════════════════════════════════════════════════

// barWidth is the number of cells in a progress bar.
const barWidth = 10

// Bar renders a progress bar like [███░░░░░░░] for value of max.
func Bar(value, max int) string {
	if max <= 0 {
		max = 1
	}
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}

	filled := value * barWidth / max
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < barWidth; i++ {
		if i < filled {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	b.WriteByte(']')
	return b.String()
}
