package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlog/questlog-bot/internal/application/query"
	"github.com/questlog/questlog-bot/internal/application/userlock"
	"github.com/questlog/questlog-bot/internal/domain/reward"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAIM REWARD COMMAND
// Claims a custom reward. Gate order is fixed: Sunday first, then the
// weekly rate strictly above 80%, then the funds check. The rate is
// recomputed from the ledger, never read from cache.
// ══════════════════════════════════════════════════════════════════════════════

// ClaimRewardCommand contains the data to claim a reward.
type ClaimRewardCommand struct {
	Owner    shared.TelegramID
	RewardID string
}

// Validate validates the command.
func (c ClaimRewardCommand) Validate() error {
	if !c.Owner.IsValid() {
		return errors.New("claim_reward: owner is required")
	}
	if c.RewardID == "" {
		return errors.New("claim_reward: reward_id is required")
	}
	return nil
}

// ClaimRewardResult contains the claimed reward and the new state.
type ClaimRewardResult struct {
	Reward *reward.Reward
	User   *user.User
	Rate   float64
}

// ClaimRewardHandler handles the ClaimRewardCommand.
type ClaimRewardHandler struct {
	userRepo   user.Repository
	rewardRepo reward.Repository
	weeklyRate *query.WeeklyRateQuery
	locks      *userlock.Registry
}

// NewClaimRewardHandler creates a new ClaimRewardHandler.
func NewClaimRewardHandler(
	userRepo user.Repository,
	rewardRepo reward.Repository,
	weeklyRate *query.WeeklyRateQuery,
	locks *userlock.Registry,
) *ClaimRewardHandler {
	return &ClaimRewardHandler{
		userRepo:   userRepo,
		rewardRepo: rewardRepo,
		weeklyRate: weeklyRate,
		locks:      locks,
	}
}

// Handle executes the command.
func (h *ClaimRewardHandler) Handle(ctx context.Context, cmd ClaimRewardCommand) (*ClaimRewardResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("claim_reward: validation failed: %w", err)
	}

	defer h.locks.Lock(cmd.Owner)()

	r, err := h.rewardRepo.GetByID(ctx, cmd.RewardID)
	if err != nil {
		return nil, err
	}
	if r.OwnerID != cmd.Owner {
		return nil, reward.ErrRewardNotFound
	}
	if r.Claimed {
		return nil, reward.ErrAlreadyClaimed
	}

	rate, err := h.weeklyRate.GetFresh(ctx, cmd.Owner)
	if err != nil {
		return nil, err
	}
	if err := reward.CheckClaimWindow(timeutil.Now(), rate.Rate); err != nil {
		return nil, err
	}

	u, err := h.userRepo.GetByTelegramID(ctx, cmd.Owner)
	if err != nil {
		return nil, fmt.Errorf("claim_reward: failed to get user: %w", err)
	}

	if err := u.SpendPoints(r.Cost); err != nil {
		return nil, err
	}
	if err := r.Claim(timeutil.Now()); err != nil {
		return nil, err
	}

	if err := h.userRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("claim_reward: failed to save user: %w", err)
	}
	if err := h.rewardRepo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("claim_reward: failed to save reward: %w", err)
	}

	return &ClaimRewardResult{Reward: r, User: u, Rate: rate.Rate}, nil
}
