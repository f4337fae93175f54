package user

import (
	"context"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Контракт для работы с хранилищем игроков.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции CRUD для игроков.
type Repository interface {
	// Create создаёт нового игрока.
	// Возвращает ErrUserAlreadyExists, если игрок уже существует.
	Create(ctx context.Context, u *User) error

	// GetByTelegramID возвращает игрока по Telegram ID.
	// Возвращает ErrUserNotFound, если игрок не найден.
	GetByTelegramID(ctx context.Context, id shared.TelegramID) (*User, error)

	// Update сохраняет изменённое состояние игрока.
	// Возвращает ErrUserNotFound, если игрок не найден.
	Update(ctx context.Context, u *User) error

	// ListIDs возвращает идентификаторы всех зарегистрированных игроков.
	// Используется вечерним расчётом и утренним напоминанием.
	ListIDs(ctx context.Context) ([]shared.TelegramID, error)

	// Count возвращает общее количество игроков.
	Count(ctx context.Context) (int, error)
}
