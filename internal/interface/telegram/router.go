// Package telegram implements the Telegram interface of the bot: the
// update loop, command and callback routing, and multi-step dialogs.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT TYPES
// These types carry request data through the routing process.
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext contains context for command handling.
type CommandContext struct {
	// UserID is the sender's Telegram ID.
	UserID shared.TelegramID

	// ChatID is the chat where the command was sent.
	ChatID int64

	// Args is the command arguments (text after the command).
	Args string

	// Username is the sender's Telegram username (may be empty).
	Username string

	// IsAdmin is true for the configured admin.
	IsAdmin bool

	// Message is the original Telegram message.
	Message *telegram.Message

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// CallbackContext contains context for callback query handling.
type CallbackContext struct {
	// UserID is the sender's Telegram ID.
	UserID shared.TelegramID

	// ChatID is the chat where the callback originated.
	ChatID int64

	// MessageID is the message with the inline keyboard.
	MessageID int64

	// QueryID is the callback query ID (for answering).
	QueryID string

	// Data is the full callback data string.
	Data string

	// Payload is the data with the matched prefix stripped.
	Payload string

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// DialogContext contains context for a text message inside a dialog.
type DialogContext struct {
	// UserID is the sender's Telegram ID.
	UserID shared.TelegramID

	// ChatID is the chat ID.
	ChatID int64

	// Text is the input text.
	Text string

	// Dialog is the current dialog state.
	Dialog *redis.Dialog

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// CommandHandler processes one bot command.
type CommandHandler interface {
	Handle(ctx context.Context, cmd CommandContext) error
}

// CommandFunc adapts a function to the CommandHandler interface.
type CommandFunc func(ctx context.Context, cmd CommandContext) error

// Handle implements CommandHandler.
func (f CommandFunc) Handle(ctx context.Context, cmd CommandContext) error {
	return f(ctx, cmd)
}

// CallbackHandler processes callback queries matching a prefix.
type CallbackHandler interface {
	Handle(ctx context.Context, cb CallbackContext) error
}

// CallbackFunc adapts a function to the CallbackHandler interface.
type CallbackFunc func(ctx context.Context, cb CallbackContext) error

// Handle implements CallbackHandler.
func (f CallbackFunc) Handle(ctx context.Context, cb CallbackContext) error {
	return f(ctx, cb)
}

// DialogHandler processes text input for dialog steps matching a prefix.
type DialogHandler interface {
	Handle(ctx context.Context, d DialogContext) error
}

// DialogFunc adapts a function to the DialogHandler interface.
type DialogFunc func(ctx context.Context, d DialogContext) error

// Handle implements DialogHandler.
func (f DialogFunc) Handle(ctx context.Context, d DialogContext) error {
	return f(ctx, d)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// ══════════════════════════════════════════════════════════════════════════════

// Router routes updates to registered handlers. Registration happens at
// startup; routing is concurrency-safe.
type Router struct {
	logger *slog.Logger

	mu        sync.RWMutex
	commands  map[string]CommandHandler
	callbacks map[string]CallbackHandler
	dialogs   map[string]DialogHandler
}

// NewRouter creates an empty router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		logger:    logger.With("component", "router"),
		commands:  make(map[string]CommandHandler),
		callbacks: make(map[string]CallbackHandler),
		dialogs:   make(map[string]DialogHandler),
	}
}

// Command registers a handler for a command (without the leading "/").
func (r *Router) Command(name string, h CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = h
}

// Callback registers a handler for callback data starting with prefix.
// The prefix should include the trailing delimiter (e.g. "task:done:").
func (r *Router) Callback(prefix string, h CallbackHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[prefix] = h
}

// Dialog registers a handler for dialog steps starting with prefix
// (e.g. "add_task:").
func (r *Router) Dialog(prefix string, h DialogHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs[prefix] = h
}

// RouteCommand dispatches a command, or reports it unknown.
func (r *Router) RouteCommand(ctx context.Context, name string, cmd CommandContext) error {
	r.mu.RLock()
	h, ok := r.commands[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("unknown command", "command", name)
		_, err := cmd.Client.SendText(ctx, cmd.ChatID, "🤔 Не знаю такой команды. Смотри /help.")
		return err
	}
	return h.Handle(ctx, cmd)
}

// RouteCallback dispatches a callback query by longest matching prefix.
func (r *Router) RouteCallback(ctx context.Context, cb CallbackContext) error {
	r.mu.RLock()
	var (
		best    CallbackHandler
		bestLen = -1
	)
	for prefix, h := range r.callbacks {
		if strings.HasPrefix(cb.Data, prefix) && len(prefix) > bestLen {
			best, bestLen = h, len(prefix)
		}
	}
	r.mu.RUnlock()

	if best == nil {
		r.logger.Debug("unknown callback", "data", cb.Data)
		return nil
	}
	cb.Payload = cb.Data[bestLen:]
	return best.Handle(ctx, cb)
}

// RouteDialog dispatches text input for a dialog in progress.
func (r *Router) RouteDialog(ctx context.Context, d DialogContext) error {
	r.mu.RLock()
	var (
		best    DialogHandler
		bestLen = -1
	)
	for prefix, h := range r.dialogs {
		if strings.HasPrefix(d.Dialog.Step, prefix) && len(prefix) > bestLen {
			best, bestLen = h, len(prefix)
		}
	}
	r.mu.RUnlock()

	if best == nil {
		r.logger.Warn("dialog step without handler", "step", d.Dialog.Step)
		return nil
	}
	return best.Handle(ctx, d)
}
