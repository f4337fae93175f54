// Package notify defines the outbound notification boundary. The rest of
// the application sends plain text to a chat ID and never learns which
// transport delivers it.
package notify

import (
	"context"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// Notifier delivers a text message to the user. Implemented by the
// Telegram client in infrastructure.
type Notifier interface {
	Send(ctx context.Context, to shared.TelegramID, text string) error
}

// Func adapts a function to the Notifier interface. Handy in tests.
type Func func(ctx context.Context, to shared.TelegramID, text string) error

// Send implements Notifier.
func (f Func) Send(ctx context.Context, to shared.TelegramID, text string) error {
	return f(ctx, to, text)
}
