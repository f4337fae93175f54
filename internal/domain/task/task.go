// Package task содержит доменную модель ежедневной задачи: категория,
// напоминание, узкое окно жизни в пределах одного дня. Это ядро
// бизнес-логики - здесь нет внешних зависимостей.
package task

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Category определяет важность задачи и размер наград и штрафов.
type Category string

const (
	// CategoryFocus - главная задача дня: большие награды, большие штрафы.
	CategoryFocus Category = "focus"
	// CategoryImportant - важная задача.
	CategoryImportant Category = "important"
	// CategoryWish - желание: маленькая награда с лечением, штраф только очками.
	CategoryWish Category = "wish"
)

// IsValid проверяет, что категория корректна.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFocus, CategoryImportant, CategoryWish:
		return true
	default:
		return false
	}
}

// Emoji возвращает значок категории для интерфейса.
func (c Category) Emoji() string {
	switch c {
	case CategoryFocus:
		return "🎯"
	case CategoryImportant:
		return "⚡"
	case CategoryWish:
		return "✨"
	default:
		return "❔"
	}
}

// TitleRu возвращает русское название категории.
func (c Category) TitleRu() string {
	switch c {
	case CategoryFocus:
		return "Фокус"
	case CategoryImportant:
		return "Важное"
	case CategoryWish:
		return "Желание"
	default:
		return string(c)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ReminderTime - время напоминания в пределах дня, нормализованное к "HH:MM".
// Пустое значение означает, что напоминание не задано.
type ReminderTime string

// reminderTimeRe принимает "16:00", "16.00" и "16 00".
var reminderTimeRe = regexp.MustCompile(`^(\d{1,2})[\s:.](\d{2})$`)

// ParseReminderTime разбирает пользовательский ввод времени напоминания.
func ParseReminderTime(input string) (ReminderTime, error) {
	m := reminderTimeRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return "", ErrInvalidReminderTime
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", ErrInvalidReminderTime
	}

	return ReminderTime(fmt.Sprintf("%02d:%02d", hour, minute)), nil
}

// IsSet возвращает true, если напоминание задано.
func (r ReminderTime) IsSet() bool {
	return r != ""
}

// String возвращает строковое представление времени.
func (r ReminderTime) String() string {
	return string(r)
}

// Clock возвращает час и минуту напоминания.
func (r ReminderTime) Clock() (hour, minute int) {
	if !r.IsSet() {
		return 0, 0
	}
	hour, _ = strconv.Atoi(string(r)[:2])
	minute, _ = strconv.Atoi(string(r)[3:])
	return hour, minute
}

// On возвращает момент срабатывания напоминания в указанный день.
// Часовой пояс берётся из самого дня.
func (r ReminderTime) On(day time.Time) time.Time {
	hour, minute := r.Clock()
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyTitle - пустое название задачи.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrTitleTooLong - слишком длинное название.
	ErrTitleTooLong = errors.New("task title must be at most 200 chars")

	// ErrInvalidCategory - неизвестная категория.
	ErrInvalidCategory = errors.New("invalid task category")

	// ErrInvalidReminderTime - время напоминания не распознано.
	ErrInvalidReminderTime = errors.New("invalid reminder time: expected HH:MM")

	// ErrAlreadyCompleted - задача уже выполнена.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrTaskNotFound - задача не найдена.
	ErrTaskNotFound = errors.New("task not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: TASK
// ══════════════════════════════════════════════════════════════════════════════

// Task - ежедневная задача. Живёт в пределах одного дня (CreatedDate):
// вечером неделанные задачи штрафуются, утром лист начинается заново.
type Task struct {
	// ID - уникальный идентификатор (UUID в строковом формате).
	ID string

	// OwnerID - владелец задачи.
	OwnerID shared.TelegramID

	// Title - название задачи.
	Title string

	// Category - категория, определяющая награды и штрафы.
	Category Category

	// ReminderTime - время напоминания ("" - без напоминания).
	ReminderTime ReminderTime

	// Completed - выполнена ли задача.
	Completed bool

	// CompletedAt - момент выполнения (nil, если не выполнена).
	CompletedAt *time.Time

	// CreatedDate - день, к которому относится задача (начало дня в зоне бота).
	CreatedDate time.Time

	// Penalized - был ли уже применён вечерний штраф за эту задачу.
	// Защита от повторного списания при повторном расчёте дня.
	Penalized bool

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// NewTaskParams содержит параметры для создания задачи.
type NewTaskParams struct {
	ID           string
	OwnerID      shared.TelegramID
	Title        string
	Category     Category
	ReminderTime ReminderTime
	Day          time.Time
}

// NewTask создаёт новую задачу с валидацией всех полей.
func NewTask(params NewTaskParams) (*Task, error) {
	if params.ID == "" {
		return nil, errors.New("task id is required")
	}
	if !params.OwnerID.IsValid() {
		return nil, errors.New("invalid owner id")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len([]rune(title)) > 200 {
		return nil, ErrTitleTooLong
	}

	if !params.Category.IsValid() {
		return nil, ErrInvalidCategory
	}

	day := params.Day
	return &Task{
		ID:           params.ID,
		OwnerID:      params.OwnerID,
		Title:        title,
		Category:     params.Category,
		ReminderTime: params.ReminderTime,
		CreatedDate:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// Complete отмечает задачу выполненной. Повторное выполнение - ошибка:
// награда начисляется ровно один раз.
func (t *Task) Complete(at time.Time) error {
	if t.Completed {
		return ErrAlreadyCompleted
	}
	t.Completed = true
	completedAt := at.UTC()
	t.CompletedAt = &completedAt
	return nil
}

// MarkPenalized помечает задачу оштрафованной.
func (t *Task) MarkPenalized() {
	t.Penalized = true
}

// ReminderDue возвращает момент срабатывания напоминания для этой задачи
// и false, если напоминание не задано.
func (t *Task) ReminderDue() (time.Time, bool) {
	if !t.ReminderTime.IsSet() {
		return time.Time{}, false
	}
	return t.ReminderTime.On(t.CreatedDate), true
}
