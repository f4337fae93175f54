package task

import (
	"context"
	"time"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Контракт для работы с хранилищем задач.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для журнала задач.
type Repository interface {
	// Create создаёт новую задачу.
	Create(ctx context.Context, t *Task) error

	// GetByID возвращает задачу по идентификатору.
	// Возвращает ErrTaskNotFound, если задача не найдена.
	GetByID(ctx context.Context, id string) (*Task, error)

	// Update сохраняет изменённое состояние задачи.
	// Возвращает ErrTaskNotFound, если задача не найдена.
	Update(ctx context.Context, t *Task) error

	// Delete удаляет задачу владельца. Возвращает ErrTaskNotFound,
	// если задачи нет или она принадлежит другому пользователю.
	Delete(ctx context.Context, owner shared.TelegramID, id string) error

	// ListByDay возвращает задачи владельца за указанный день.
	ListByDay(ctx context.Context, owner shared.TelegramID, day time.Time) ([]*Task, error)

	// MarkDayPenalized помечает оштрафованными все невыполненные задачи
	// владельца за день и возвращает количество затронутых задач.
	// Уже оштрафованные и выполненные задачи не трогает - это защита
	// от двойного списания при повторном расчёте.
	MarkDayPenalized(ctx context.Context, owner shared.TelegramID, day time.Time) (int, error)

	// CompletionStats возвращает счётчики выполненных и всех задач
	// владельца за период [from, to] включительно по дням.
	CompletionStats(ctx context.Context, owner shared.TelegramID, from, to time.Time) (done, total int, err error)
}
