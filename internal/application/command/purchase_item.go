package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlog/questlog-bot/internal/application/userlock"
	"github.com/questlog/questlog-bot/internal/domain/reward"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// PURCHASE ITEM COMMAND
// Buys a consumable from the shop: the one-use shield or the manual
// pepper mode. State check comes before the funds check, so a player
// with an active shield keeps their points.
// ══════════════════════════════════════════════════════════════════════════════

// ShopItem identifies a purchasable consumable.
type ShopItem string

const (
	// ItemShield - one-use shield, absorbs the first HP penalty.
	ItemShield ShopItem = "shield"

	// ItemPepper - manual pepper mode activation.
	ItemPepper ShopItem = "pepper"
)

// IsValid checks the item is known.
func (i ShopItem) IsValid() bool {
	return i == ItemShield || i == ItemPepper
}

// Cost returns the item price in points.
func (i ShopItem) Cost() int {
	switch i {
	case ItemShield:
		return reward.ShieldCost
	case ItemPepper:
		return reward.PepperCost
	default:
		return 0
	}
}

// PurchaseItemCommand contains the data to buy a consumable.
type PurchaseItemCommand struct {
	Buyer shared.TelegramID
	Item  ShopItem
}

// Validate validates the command.
func (c PurchaseItemCommand) Validate() error {
	if !c.Buyer.IsValid() {
		return errors.New("purchase_item: buyer is required")
	}
	if !c.Item.IsValid() {
		return fmt.Errorf("purchase_item: unknown item: %s", c.Item)
	}
	return nil
}

// PurchaseItemResult contains the new player state.
type PurchaseItemResult struct {
	User *user.User
	Item ShopItem
	Cost int
}

// PurchaseItemHandler handles the PurchaseItemCommand.
type PurchaseItemHandler struct {
	userRepo user.Repository
	locks    *userlock.Registry
}

// NewPurchaseItemHandler creates a new PurchaseItemHandler.
func NewPurchaseItemHandler(userRepo user.Repository, locks *userlock.Registry) *PurchaseItemHandler {
	return &PurchaseItemHandler{userRepo: userRepo, locks: locks}
}

// Handle executes the command.
func (h *PurchaseItemHandler) Handle(ctx context.Context, cmd PurchaseItemCommand) (*PurchaseItemResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("purchase_item: validation failed: %w", err)
	}

	defer h.locks.Lock(cmd.Buyer)()

	u, err := h.userRepo.GetByTelegramID(ctx, cmd.Buyer)
	if err != nil {
		return nil, fmt.Errorf("purchase_item: failed to get user: %w", err)
	}

	switch cmd.Item {
	case ItemShield:
		if u.ShieldActive {
			return nil, user.ErrShieldAlreadyActive
		}
	case ItemPepper:
		if u.PepperMode {
			return nil, user.ErrPepperAlreadyActive
		}
	}

	if err := u.SpendPoints(cmd.Item.Cost()); err != nil {
		return nil, err
	}

	switch cmd.Item {
	case ItemShield:
		if err := u.ActivateShield(); err != nil {
			return nil, err
		}
	case ItemPepper:
		if err := u.ActivatePepper(); err != nil {
			return nil, err
		}
	}

	if err := h.userRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("purchase_item: failed to save user: %w", err)
	}

	return &PurchaseItemResult{User: u, Item: cmd.Item, Cost: cmd.Item.Cost()}, nil
}
