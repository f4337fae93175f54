package handler

import (
	"context"
	"fmt"

	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// CANCEL HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CancelHandler handles the /cancel command: it drops whatever dialog
// is in progress.
type CancelHandler struct {
	dialogs *redis.DialogStore
}

// NewCancelHandler creates a new CancelHandler.
func NewCancelHandler(dialogs *redis.DialogStore) *CancelHandler {
	return &CancelHandler{dialogs: dialogs}
}

// Handle processes the /cancel command.
func (h *CancelHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	if err := h.dialogs.Clear(ctx, cmd.UserID); err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	_, err := cmd.Client.SendText(ctx, cmd.ChatID, "Ок, отменил. 👌")
	return err
}
