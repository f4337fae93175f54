package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/questlog/questlog-bot/internal/application/command"
	"github.com/questlog/questlog-bot/internal/domain/reward"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/internal/infrastructure/external/telegram"
	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
	"github.com/questlog/questlog-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// REWARDS HANDLER
// Custom reward wishlist: create over a two-step dialog, claim on
// Sundays when the week was good enough.
// ══════════════════════════════════════════════════════════════════════════════

// Dialog steps of the add-reward flow.
const (
	stepRewardTitle = "add_reward:title"
	stepRewardCost  = "add_reward:cost"
)

// RewardsHandler handles /rewards, the claim callbacks, and the
// add-reward dialog.
type RewardsHandler struct {
	userRepo     user.Repository
	rewardRepo   reward.Repository
	createReward *command.CreateRewardHandler
	claimReward  *command.ClaimRewardHandler
	dialogs      *redis.DialogStore
}

// NewRewardsHandler creates a new RewardsHandler.
func NewRewardsHandler(
	userRepo user.Repository,
	rewardRepo reward.Repository,
	createReward *command.CreateRewardHandler,
	claimReward *command.ClaimRewardHandler,
	dialogs *redis.DialogStore,
) *RewardsHandler {
	return &RewardsHandler{
		userRepo:     userRepo,
		rewardRepo:   rewardRepo,
		createReward: createReward,
		claimReward:  claimReward,
		dialogs:      dialogs,
	}
}

// Handle processes the /rewards command.
func (h *RewardsHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	u, err := h.userRepo.GetByTelegramID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			_, serr := cmd.Client.SendText(ctx, cmd.ChatID, "Сначала зарегистрируйся: /start")
			return serr
		}
		return fmt.Errorf("rewards: %w", err)
	}

	rewards, err := h.rewardRepo.ListUnclaimed(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("rewards: %w", err)
	}

	kb := telegram.NewKeyboard()
	for _, rw := range rewards {
		kb.Row(telegram.Button(presenter.RewardLine(rw), "reward:claim:"+rw.ID))
	}
	kb.Row(telegram.Button("➕ Новая награда", "reward:new"))

	_, err = cmd.Client.SendWithKeyboard(ctx, cmd.ChatID,
		presenter.RewardList(rewards, int(u.Points)), kb.Build())
	return err
}

// HandleNew processes the "reward:new" callback: it opens the dialog.
func (h *RewardsHandler) HandleNew(ctx context.Context, cb tgiface.CallbackContext) error {
	d := &redis.Dialog{Step: stepRewardTitle}
	if err := h.dialogs.Put(ctx, cb.UserID, d); err != nil {
		return fmt.Errorf("rewards: %w", err)
	}

	_, err := cb.Client.SendText(ctx, cb.ChatID, "🎁 Как назовём награду?")
	return err
}

// HandleDialog processes the text steps of the add-reward flow.
func (h *RewardsHandler) HandleDialog(ctx context.Context, d tgiface.DialogContext) error {
	switch d.Dialog.Step {
	case stepRewardTitle:
		return h.handleTitle(ctx, d)
	case stepRewardCost:
		return h.handleCost(ctx, d)
	default:
		return nil
	}
}

// handleTitle stores the title and asks for the cost.
func (h *RewardsHandler) handleTitle(ctx context.Context, d tgiface.DialogContext) error {
	if d.Text == "" {
		_, err := d.Client.SendText(ctx, d.ChatID, "Название не может быть пустым. Попробуй ещё раз.")
		return err
	}

	d.Dialog.Set("title", d.Text)
	d.Dialog.Step = stepRewardCost
	if err := h.dialogs.Put(ctx, d.UserID, d.Dialog); err != nil {
		return fmt.Errorf("rewards: %w", err)
	}

	_, err := d.Client.SendText(ctx, d.ChatID, "💰 Сколько очков она стоит?")
	return err
}

// handleCost finishes the flow.
func (h *RewardsHandler) handleCost(ctx context.Context, d tgiface.DialogContext) error {
	cost, err := strconv.Atoi(d.Text)
	if err != nil || cost <= 0 {
		_, serr := d.Client.SendText(ctx, d.ChatID, "Нужно положительное число, например 150.")
		return serr
	}

	rw, err := h.createReward.Handle(ctx, command.CreateRewardCommand{
		Owner: d.UserID,
		Title: d.Dialog.Value("title"),
		Cost:  cost,
	})
	if err != nil {
		return fmt.Errorf("rewards: create: %w", err)
	}

	if err := h.dialogs.Clear(ctx, d.UserID); err != nil {
		return fmt.Errorf("rewards: %w", err)
	}

	_, err = d.Client.SendText(ctx, d.ChatID,
		fmt.Sprintf("Записал: 🎁 %s за %d очков.\nУвидимся в воскресенье!", rw.Title, rw.Cost))
	return err
}

// HandleClaim processes the "reward:claim:" callback.
func (h *RewardsHandler) HandleClaim(ctx context.Context, cb tgiface.CallbackContext) error {
	res, err := h.claimReward.Handle(ctx, command.ClaimRewardCommand{
		Owner:    cb.UserID,
		RewardID: cb.Payload,
	})
	if err != nil {
		var text string
		switch {
		case errors.Is(err, reward.ErrNotSunday):
			text = "Награды выдаются только в воскресенье. 📅"
		case errors.Is(err, reward.ErrRateTooLow):
			text = "За неделю выполнено меньше 80% задач. Дожми неделю! 💪"
		case errors.Is(err, user.ErrInsufficientPoints):
			text = "Не хватает очков на эту награду. 💸"
		case errors.Is(err, reward.ErrAlreadyClaimed):
			text = "Эта награда уже получена."
		case errors.Is(err, reward.ErrRewardNotFound):
			text = "Награда не найдена. Обнови список: /rewards"
		default:
			return fmt.Errorf("rewards: claim: %w", err)
		}
		_, serr := cb.Client.SendText(ctx, cb.ChatID, text)
		return serr
	}

	_, err = cb.Client.SendText(ctx, cb.ChatID, fmt.Sprintf(
		"🎉 Заслужил: %s!\nНеделя закрыта на %.0f%%. Осталось очков: %d",
		res.Reward.Title, res.Rate, int(res.User.Points)))
	return err
}
