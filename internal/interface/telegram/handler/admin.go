package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/questlog/questlog-bot/internal/domain/access"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLER
// Whitelist management: /allow, /deny, /whitelist. Admin only.
// ══════════════════════════════════════════════════════════════════════════════

// AdminHandler handles the whitelist commands.
type AdminHandler struct {
	accessRepo access.Repository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accessRepo access.Repository) *AdminHandler {
	return &AdminHandler{accessRepo: accessRepo}
}

// HandleAllow processes /allow <telegram_id>.
func (h *AdminHandler) HandleAllow(ctx context.Context, cmd tgiface.CommandContext) error {
	if !cmd.IsAdmin {
		return h.denyNonAdmin(ctx, cmd)
	}

	id, ok := parseTelegramID(cmd.Args)
	if !ok {
		_, err := cmd.Client.SendText(ctx, cmd.ChatID, "Использование: /allow <telegram_id>")
		return err
	}

	if err := h.accessRepo.Add(ctx, id); err != nil {
		if errors.Is(err, access.ErrAlreadyAllowed) {
			_, serr := cmd.Client.SendText(ctx, cmd.ChatID, "Этот пользователь уже в списке.")
			return serr
		}
		return fmt.Errorf("admin: allow: %w", err)
	}

	_, err := cmd.Client.SendText(ctx, cmd.ChatID, fmt.Sprintf("Добавил %d в белый список. ✅", id.Int64()))
	return err
}

// HandleDeny processes /deny <telegram_id>.
func (h *AdminHandler) HandleDeny(ctx context.Context, cmd tgiface.CommandContext) error {
	if !cmd.IsAdmin {
		return h.denyNonAdmin(ctx, cmd)
	}

	id, ok := parseTelegramID(cmd.Args)
	if !ok {
		_, err := cmd.Client.SendText(ctx, cmd.ChatID, "Использование: /deny <telegram_id>")
		return err
	}

	if err := h.accessRepo.Remove(ctx, id); err != nil {
		if errors.Is(err, access.ErrNotAllowed) {
			_, serr := cmd.Client.SendText(ctx, cmd.ChatID, "Этого пользователя нет в списке.")
			return serr
		}
		return fmt.Errorf("admin: deny: %w", err)
	}

	_, err := cmd.Client.SendText(ctx, cmd.ChatID, fmt.Sprintf("Убрал %d из белого списка.", id.Int64()))
	return err
}

// HandleList processes /whitelist.
func (h *AdminHandler) HandleList(ctx context.Context, cmd tgiface.CommandContext) error {
	if !cmd.IsAdmin {
		return h.denyNonAdmin(ctx, cmd)
	}

	ids, err := h.accessRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("admin: list: %w", err)
	}

	if len(ids) == 0 {
		_, err := cmd.Client.SendText(ctx, cmd.ChatID, "Белый список пуст.")
		return err
	}

	var b strings.Builder
	b.WriteString("Белый список:\n")
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("• %d\n", id.Int64()))
	}

	_, err = cmd.Client.SendText(ctx, cmd.ChatID, b.String())
	return err
}

// denyNonAdmin answers a non-admin politely.
func (h *AdminHandler) denyNonAdmin(ctx context.Context, cmd tgiface.CommandContext) error {
	_, err := cmd.Client.SendText(ctx, cmd.ChatID, "Эта команда только для администратора.")
	return err
}

// parseTelegramID parses the command argument into a valid TelegramID.
func parseTelegramID(args string) (shared.TelegramID, bool) {
	raw := strings.TrimSpace(args)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	id := shared.TelegramID(n)
	return id, id.IsValid()
}
