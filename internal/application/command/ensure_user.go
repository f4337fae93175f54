// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENSURE USER COMMAND
// Registers the player on first contact (/start). Subsequent calls are
// no-ops that return the existing state.
// ══════════════════════════════════════════════════════════════════════════════

// EnsureUserCommand contains the data to register a player.
type EnsureUserCommand struct {
	TelegramID shared.TelegramID
	Username   string
}

// Validate validates the command.
func (c EnsureUserCommand) Validate() error {
	if !c.TelegramID.IsValid() {
		return errors.New("ensure_user: telegram_id is required")
	}
	return nil
}

// EnsureUserResult contains the result of the registration.
type EnsureUserResult struct {
	User    *user.User
	Created bool
}

// EnsureUserHandler handles the EnsureUserCommand.
type EnsureUserHandler struct {
	userRepo user.Repository
}

// NewEnsureUserHandler creates a new EnsureUserHandler.
func NewEnsureUserHandler(userRepo user.Repository) *EnsureUserHandler {
	return &EnsureUserHandler{userRepo: userRepo}
}

// Handle executes the command.
func (h *EnsureUserHandler) Handle(ctx context.Context, cmd EnsureUserCommand) (*EnsureUserResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("ensure_user: validation failed: %w", err)
	}

	existing, err := h.userRepo.GetByTelegramID(ctx, cmd.TelegramID)
	if err == nil {
		return &EnsureUserResult{User: existing}, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("ensure_user: failed to get user: %w", err)
	}

	username := cmd.Username
	if username == "" {
		username = fmt.Sprintf("player_%d", cmd.TelegramID)
	}

	u, err := user.NewUser(user.NewUserParams{
		TelegramID: cmd.TelegramID,
		Username:   username,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure_user: %w", err)
	}

	if err := h.userRepo.Create(ctx, u); err != nil {
		// Lost the race against a concurrent /start: re-read the winner.
		if errors.Is(err, user.ErrUserAlreadyExists) {
			existing, gerr := h.userRepo.GetByTelegramID(ctx, cmd.TelegramID)
			if gerr != nil {
				return nil, fmt.Errorf("ensure_user: %w", gerr)
			}
			return &EnsureUserResult{User: existing}, nil
		}
		return nil, fmt.Errorf("ensure_user: failed to create user: %w", err)
	}

	return &EnsureUserResult{User: u, Created: true}, nil
}
