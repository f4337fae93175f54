// Package middleware contains the update-processing middleware: whitelist
// access control and panic recovery.
package middleware

import (
	"context"
	"log/slog"

	"github.com/questlog/questlog-bot/internal/domain/access"
	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WHITELIST AUTH
// The bot is personal: only whitelisted Telegram IDs get in, the admin
// always gets in.
// ══════════════════════════════════════════════════════════════════════════════

// AuthResult is the outcome of an access check.
type AuthResult struct {
	// Allowed is true when the update should be processed.
	Allowed bool

	// IsAdmin is true for the configured admin.
	IsAdmin bool

	// DenyMessage is the text to send when access is denied.
	DenyMessage string
}

// AuthMiddleware gates updates on the whitelist.
type AuthMiddleware struct {
	checker *access.Checker
	logger  *slog.Logger
}

// NewAuthMiddleware creates the middleware.
func NewAuthMiddleware(checker *access.Checker, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		checker: checker,
		logger:  logger.With("component", "auth_middleware"),
	}
}

// Check verifies the sender against the whitelist.
func (m *AuthMiddleware) Check(ctx context.Context, id shared.TelegramID) AuthResult {
	if m.checker.IsAdmin(id) {
		return AuthResult{Allowed: true, IsAdmin: true}
	}

	allowed, err := m.checker.Allowed(ctx, id)
	if err != nil {
		m.logger.Error("whitelist check failed", "telegram_id", id.Int64(), "error", err)
		return AuthResult{
			DenyMessage: "😔 Произошла ошибка. Попробуй позже.",
		}
	}

	if !allowed {
		m.logger.Info("access denied", "telegram_id", id.Int64())
		return AuthResult{
			DenyMessage: "🔒 Это личный бот. Доступ только по приглашению.",
		}
	}

	return AuthResult{Allowed: true}
}
