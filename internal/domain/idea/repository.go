package idea

import (
	"context"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// Repository определяет операции для хранилища категорий и идей.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// CreateCategory создаёт новую категорию.
	CreateCategory(ctx context.Context, c *Category) error

	// GetCategory возвращает категорию владельца по идентификатору.
	// Возвращает ErrCategoryNotFound, если категория не найдена.
	GetCategory(ctx context.Context, owner shared.TelegramID, id string) (*Category, error)

	// ListCategories возвращает категории владельца.
	ListCategories(ctx context.Context, owner shared.TelegramID) ([]*Category, error)

	// DeleteCategory удаляет категорию вместе с её идеями.
	DeleteCategory(ctx context.Context, owner shared.TelegramID, id string) error

	// CreateIdea создаёт новую идею.
	CreateIdea(ctx context.Context, i *Idea) error

	// GetIdea возвращает идею владельца по идентификатору.
	// Возвращает ErrIdeaNotFound, если идея не найдена.
	GetIdea(ctx context.Context, owner shared.TelegramID, id string) (*Idea, error)

	// UpdateIdea сохраняет изменённое состояние идеи.
	UpdateIdea(ctx context.Context, i *Idea) error

	// DeleteIdea удаляет идею владельца.
	DeleteIdea(ctx context.Context, owner shared.TelegramID, id string) error

	// ListIdeas возвращает идеи категории.
	ListIdeas(ctx context.Context, owner shared.TelegramID, categoryID string) ([]*Idea, error)
}
