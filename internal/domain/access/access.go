// Package access содержит белый список пользователей бота.
// Бот личный: доступ получают только явно добавленные Telegram ID,
// администратор имеет доступ всегда.
package access

import (
	"context"
	"errors"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

var (
	// ErrNotAllowed - пользователь не в белом списке.
	ErrNotAllowed = errors.New("user is not whitelisted")

	// ErrAlreadyAllowed - пользователь уже в белом списке.
	ErrAlreadyAllowed = errors.New("user is already whitelisted")
)

// Repository определяет операции белого списка.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Add добавляет пользователя в белый список.
	// Возвращает ErrAlreadyAllowed при повторном добавлении.
	Add(ctx context.Context, id shared.TelegramID) error

	// Remove убирает пользователя из белого списка.
	Remove(ctx context.Context, id shared.TelegramID) error

	// IsAllowed проверяет, есть ли пользователь в белом списке.
	IsAllowed(ctx context.Context, id shared.TelegramID) (bool, error)

	// List возвращает все ID белого списка.
	List(ctx context.Context) ([]shared.TelegramID, error)
}

// Checker решает, пускать ли пользователя в бота.
// Администратор проходит всегда, даже если его нет в списке.
type Checker struct {
	repo    Repository
	adminID shared.TelegramID
}

// NewChecker создаёт проверку доступа.
func NewChecker(repo Repository, adminID shared.TelegramID) *Checker {
	return &Checker{repo: repo, adminID: adminID}
}

// IsAdmin проверяет, является ли пользователь администратором.
func (c *Checker) IsAdmin(id shared.TelegramID) bool {
	return id == c.adminID
}

// Allowed проверяет доступ пользователя к боту.
func (c *Checker) Allowed(ctx context.Context, id shared.TelegramID) (bool, error) {
	if c.IsAdmin(id) {
		return true, nil
	}
	return c.repo.IsAllowed(ctx, id)
}
