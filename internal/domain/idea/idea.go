// Package idea содержит доменную модель копилки идей: пользовательские
// категории и идеи с циклом статусов.
package idea

import (
	"errors"
	"strings"
	"time"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет состояние идеи. Статусы сменяются по кругу:
// new -> wip -> done -> new.
type Status string

const (
	// StatusNew - свежая идея.
	StatusNew Status = "new"
	// StatusWIP - идея в работе.
	StatusWIP Status = "wip"
	// StatusDone - идея реализована.
	StatusDone Status = "done"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusWIP, StatusDone:
		return true
	default:
		return false
	}
}

// Next возвращает следующий статус цикла.
func (s Status) Next() Status {
	switch s {
	case StatusNew:
		return StatusWIP
	case StatusWIP:
		return StatusDone
	default:
		return StatusNew
	}
}

// Emoji возвращает значок статуса для интерфейса.
func (s Status) Emoji() string {
	switch s {
	case StatusNew:
		return "🔵"
	case StatusWIP:
		return "🟡"
	case StatusDone:
		return "🟢"
	default:
		return "⚪"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyName - пустое название.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrIdeaNotFound - идея не найдена.
	ErrIdeaNotFound = errors.New("idea not found")

	// ErrCategoryNotFound - категория не найдена.
	ErrCategoryNotFound = errors.New("idea category not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Category - пользовательская категория идей с собственным значком.
type Category struct {
	// ID - уникальный идентификатор (UUID в строковом формате).
	ID string

	// OwnerID - владелец категории.
	OwnerID shared.TelegramID

	// Name - название категории.
	Name string

	// Emoji - значок категории.
	Emoji string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// NewCategory создаёт новую категорию идей.
func NewCategory(id string, owner shared.TelegramID, name, emoji string) (*Category, error) {
	if id == "" {
		return nil, errors.New("category id is required")
	}
	if !owner.IsValid() {
		return nil, errors.New("invalid owner id")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if emoji == "" {
		emoji = "💡"
	}

	return &Category{
		ID:        id,
		OwnerID:   owner,
		Name:      name,
		Emoji:     emoji,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Idea - заметка в копилке, привязанная к категории.
type Idea struct {
	// ID - уникальный идентификатор (UUID в строковом формате).
	ID string

	// OwnerID - владелец идеи.
	OwnerID shared.TelegramID

	// CategoryID - категория, к которой относится идея.
	CategoryID string

	// Title - текст идеи.
	Title string

	// Status - текущее состояние идеи.
	Status Status

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// NewIdea создаёт новую идею со статусом "new".
func NewIdea(id string, owner shared.TelegramID, categoryID, title string) (*Idea, error) {
	if id == "" {
		return nil, errors.New("idea id is required")
	}
	if !owner.IsValid() {
		return nil, errors.New("invalid owner id")
	}
	if categoryID == "" {
		return nil, ErrCategoryNotFound
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyName
	}

	return &Idea{
		ID:         id,
		OwnerID:    owner,
		CategoryID: categoryID,
		Title:      title,
		Status:     StatusNew,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// CycleStatus переводит идею в следующий статус цикла.
func (i *Idea) CycleStatus() {
	i.Status = i.Status.Next()
}
