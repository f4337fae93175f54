package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/questlog/questlog-bot/internal/application/command"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
	"github.com/questlog/questlog-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHOP HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ShopHandler handles /shop and the purchase callbacks.
type ShopHandler struct {
	userRepo user.Repository
	purchase *command.PurchaseItemHandler
	logger   *slog.Logger
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(userRepo user.Repository, purchase *command.PurchaseItemHandler, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		userRepo: userRepo,
		purchase: purchase,
		logger:   logger.With("component", "shop_handler"),
	}
}

// Handle processes the /shop command.
func (h *ShopHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	u, err := h.userRepo.GetByTelegramID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			_, serr := cmd.Client.SendText(ctx, cmd.ChatID, "Сначала зарегистрируйся: /start")
			return serr
		}
		return fmt.Errorf("shop: %w", err)
	}

	keyboard := telegram.NewKeyboard().
		Row(telegram.Button("🛡 Купить щит", "shop:shield")).
		Row(telegram.Button("🌶 Купить перец", "shop:pepper")).
		Build()

	_, err = cmd.Client.SendWithKeyboard(ctx, cmd.ChatID, presenter.Shop(int(u.Points)), keyboard)
	return err
}

// HandlePurchase processes the "shop:" callback.
func (h *ShopHandler) HandlePurchase(ctx context.Context, cb tgiface.CallbackContext) error {
	res, err := h.purchase.Handle(ctx, command.PurchaseItemCommand{
		Buyer: cb.UserID,
		Item:  command.ShopItem(cb.Payload),
	})
	if err != nil {
		var text string
		switch {
		case errors.Is(err, user.ErrInsufficientPoints):
			text = "Не хватает очков. 💸 Выполняй задачи!"
		case errors.Is(err, user.ErrShieldAlreadyActive):
			text = "Щит уже активен. 🛡"
		case errors.Is(err, user.ErrPepperAlreadyActive):
			text = "Режим перца уже включён. 🌶"
		default:
			return fmt.Errorf("shop: purchase: %w", err)
		}
		_, serr := cb.Client.SendText(ctx, cb.ChatID, text)
		return serr
	}

	// The menu's balance and buttons are stale after a purchase.
	if err := cb.Client.DeleteMessage(ctx, cb.ChatID, cb.MessageID); err != nil {
		h.logger.Warn("failed to remove shop menu", "error", err)
	}

	var text string
	switch res.Item {
	case command.ItemShield:
		text = fmt.Sprintf("🛡 Щит активен! Он поглотит первый штраф по здоровью.\nОсталось очков: %d", int(res.User.Points))
	case command.ItemPepper:
		text = fmt.Sprintf("🌶 Режим перца включён: x1.5 к опыту!\nОсталось очков: %d", int(res.User.Points))
	}

	_, err = cb.Client.SendText(ctx, cb.ChatID, text)
	return err
}
