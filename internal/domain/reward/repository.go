package reward

import (
	"context"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// Repository определяет операции для хранилища наград.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create создаёт новую награду.
	Create(ctx context.Context, r *Reward) error

	// GetByID возвращает награду по идентификатору.
	// Возвращает ErrRewardNotFound, если награда не найдена.
	GetByID(ctx context.Context, id string) (*Reward, error)

	// Update сохраняет изменённое состояние награды.
	Update(ctx context.Context, r *Reward) error

	// Delete удаляет награду владельца.
	Delete(ctx context.Context, owner shared.TelegramID, id string) error

	// ListUnclaimed возвращает неполученные награды владельца.
	ListUnclaimed(ctx context.Context, owner shared.TelegramID) ([]*Reward, error)
}
