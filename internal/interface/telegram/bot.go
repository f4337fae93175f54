package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
	"github.com/questlog/questlog-bot/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// PollingTimeout is the long polling timeout in seconds.
	PollingTimeout int

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout bounds the wait for in-flight handlers.
	GracefulShutdownTimeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		PollingTimeout:          30,
		MaxConcurrentUpdates:    32,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// Receives updates over long polling, gates them on the whitelist, and
// dispatches them through the router. Text messages outside a dialog
// are ignored.
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the Telegram interface controller.
type Bot struct {
	config  BotConfig
	client  *telegram.Client
	router  *Router
	dialogs *redis.DialogStore
	logger  *slog.Logger

	auth     *middleware.AuthMiddleware
	recovery *middleware.RecoveryMiddleware
	admin    func(shared.TelegramID) bool

	updateSem chan struct{}
	wg        sync.WaitGroup
}

// BotParams contains the dependencies for NewBot.
type BotParams struct {
	Config  BotConfig
	Client  *telegram.Client
	Router  *Router
	Dialogs *redis.DialogStore
	Auth    *middleware.AuthMiddleware

	// IsAdmin reports whether the ID is the configured admin.
	IsAdmin func(shared.TelegramID) bool

	Logger *slog.Logger
}

// NewBot creates the bot.
func NewBot(p BotParams) (*Bot, error) {
	if p.Client == nil {
		return nil, errors.New("telegram client is required")
	}
	if p.Router == nil {
		return nil, errors.New("router is required")
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Config.MaxConcurrentUpdates <= 0 {
		p.Config.MaxConcurrentUpdates = DefaultBotConfig().MaxConcurrentUpdates
	}
	if p.IsAdmin == nil {
		p.IsAdmin = func(shared.TelegramID) bool { return false }
	}

	logger := p.Logger.With("component", "bot")

	return &Bot{
		config:    p.Config,
		client:    p.Client,
		router:    p.Router,
		dialogs:   p.Dialogs,
		logger:    logger,
		auth:      p.Auth,
		recovery:  middleware.NewRecoveryMiddleware(p.Logger),
		admin:     p.IsAdmin,
		updateSem: make(chan struct{}, p.Config.MaxConcurrentUpdates),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Run verifies the token and polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("bot: verify token: %w", err)
	}
	b.logger.Info("bot verified", "id", me.ID, "username", me.Username)

	err = b.client.StartPolling(ctx, b.handleUpdate)

	// Let in-flight handlers finish before reporting shutdown.
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// handleUpdate processes a single Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	switch {
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		return b.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		return nil
	}
}

// handleMessage processes an incoming message.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil || msg.From.IsBot || !telegram.IsPrivateChat(msg) {
		return nil
	}

	userID := shared.TelegramID(msg.From.ID)
	chatID := msg.Chat.ID

	auth := b.auth.Check(ctx, userID)
	if !auth.Allowed {
		_, err := b.client.SendText(ctx, chatID, auth.DenyMessage)
		return err
	}

	if cmd := telegram.ExtractCommand(msg); cmd != "" {
		return b.dispatchCommand(ctx, cmd, CommandContext{
			UserID:   userID,
			ChatID:   chatID,
			Args:     telegram.ExtractCommandArgs(msg),
			Username: msg.From.Username,
			IsAdmin:  b.admin(userID),
			Message:  msg,
			Client:   b.client,
		})
	}

	if msg.Text != "" {
		return b.dispatchText(ctx, userID, chatID, msg.Text)
	}
	return nil
}

// dispatchCommand routes a command through recovery.
func (b *Bot) dispatchCommand(ctx context.Context, name string, cmd CommandContext) error {
	res := b.recovery.Run("/"+name, func() error {
		return b.router.RouteCommand(ctx, name, cmd)
	})
	if res.Recovered {
		_, err := b.client.SendText(ctx, cmd.ChatID, res.UserMessage)
		return err
	}
	if res.Err != nil {
		b.logger.Error("command failed", "command", name, "telegram_id", cmd.UserID.Int64(), "error", res.Err)
		_, serr := b.client.SendText(ctx, cmd.ChatID, "😔 Произошла ошибка. Попробуй позже.")
		return serr
	}
	return nil
}

// dispatchText routes a plain text message to the dialog in progress.
// Text outside a dialog is ignored.
func (b *Bot) dispatchText(ctx context.Context, userID shared.TelegramID, chatID int64, text string) error {
	d, err := b.dialogs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, redis.ErrNoDialog) {
			return nil
		}
		return fmt.Errorf("bot: load dialog: %w", err)
	}

	res := b.recovery.Run("dialog:"+d.Step, func() error {
		return b.router.RouteDialog(ctx, DialogContext{
			UserID: userID,
			ChatID: chatID,
			Text:   text,
			Dialog: d,
			Client: b.client,
		})
	})
	if res.Recovered {
		_, err := b.client.SendText(ctx, chatID, res.UserMessage)
		return err
	}
	if res.Err != nil {
		b.logger.Error("dialog step failed", "step", d.Step, "telegram_id", userID.Int64(), "error", res.Err)
		_, serr := b.client.SendText(ctx, chatID, "😔 Произошла ошибка. Попробуй позже или /cancel.")
		return serr
	}
	return nil
}

// handleCallbackQuery processes a callback query from an inline keyboard.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq.From == nil || cq.Message == nil {
		return nil
	}

	userID := shared.TelegramID(cq.From.ID)
	chatID := cq.Message.Chat.ID

	// Answer first: the client shows a spinner until we do.
	defer func() {
		_ = b.client.AnswerCallbackQuery(ctx, cq.ID, "", false)
	}()

	auth := b.auth.Check(ctx, userID)
	if !auth.Allowed {
		return b.client.AnswerCallbackQuery(ctx, cq.ID, auth.DenyMessage, true)
	}

	res := b.recovery.Run("callback:"+cq.Data, func() error {
		return b.router.RouteCallback(ctx, CallbackContext{
			UserID:    userID,
			ChatID:    chatID,
			MessageID: cq.Message.MessageID,
			QueryID:   cq.ID,
			Data:      cq.Data,
			Client:    b.client,
		})
	})
	if res.Recovered {
		_, err := b.client.SendText(ctx, chatID, res.UserMessage)
		return err
	}
	if res.Err != nil {
		b.logger.Error("callback failed", "data", cq.Data, "telegram_id", userID.Int64(), "error", res.Err)
		_, serr := b.client.SendText(ctx, chatID, "😔 Произошла ошибка. Попробуй позже.")
		return serr
	}
	return nil
}
