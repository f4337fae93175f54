package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/questlog/questlog-bot/internal/domain/reward"
	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE REWARD COMMAND
// Adds a custom reward to the player's wishlist.
// ══════════════════════════════════════════════════════════════════════════════

// CreateRewardCommand contains the data to create a reward.
type CreateRewardCommand struct {
	Owner shared.TelegramID
	Title string
	Cost  int
}

// Validate validates the command.
func (c CreateRewardCommand) Validate() error {
	if !c.Owner.IsValid() {
		return errors.New("create_reward: owner is required")
	}
	return nil
}

// CreateRewardHandler handles the CreateRewardCommand.
type CreateRewardHandler struct {
	rewardRepo reward.Repository
}

// NewCreateRewardHandler creates a new CreateRewardHandler.
func NewCreateRewardHandler(rewardRepo reward.Repository) *CreateRewardHandler {
	return &CreateRewardHandler{rewardRepo: rewardRepo}
}

// Handle executes the command.
func (h *CreateRewardHandler) Handle(ctx context.Context, cmd CreateRewardCommand) (*reward.Reward, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_reward: validation failed: %w", err)
	}

	r, err := reward.NewReward(reward.NewRewardParams{
		ID:      uuid.NewString(),
		OwnerID: cmd.Owner,
		Title:   cmd.Title,
		Cost:    cmd.Cost,
	})
	if err != nil {
		return nil, err
	}

	if err := h.rewardRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create_reward: failed to save reward: %w", err)
	}
	return r, nil
}
