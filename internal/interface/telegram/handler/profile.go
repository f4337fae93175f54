package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlog/questlog-bot/internal/application/query"
	"github.com/questlog/questlog-bot/internal/domain/user"
	tgiface "github.com/questlog/questlog-bot/internal/interface/telegram"
	"github.com/questlog/questlog-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ProfileHandler handles the /profile command.
type ProfileHandler struct {
	userRepo   user.Repository
	weeklyRate *query.WeeklyRateQuery
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userRepo user.Repository, weeklyRate *query.WeeklyRateQuery) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo, weeklyRate: weeklyRate}
}

// Handle processes the /profile command.
func (h *ProfileHandler) Handle(ctx context.Context, cmd tgiface.CommandContext) error {
	u, err := h.userRepo.GetByTelegramID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			_, serr := cmd.Client.SendText(ctx, cmd.ChatID, "Сначала зарегистрируйся: /start")
			return serr
		}
		return fmt.Errorf("profile: %w", err)
	}

	rate, err := h.weeklyRate.Get(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	_, err = cmd.Client.SendMarkdown(ctx, cmd.ChatID, presenter.ProfileCard(u, rate.Rate))
	return err
}
