// Package reward содержит доменную модель магазина наград: расходники
// (щит, перец) и пользовательские награды с еженедельным окном получения.
package reward

import (
	"errors"
	"strings"
	"time"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHOP ITEMS
// ══════════════════════════════════════════════════════════════════════════════

// Цены расходников в очках.
const (
	// ShieldCost - цена одноразового щита.
	ShieldCost = 50

	// PepperCost - цена ручного включения режима перца.
	PepperCost = 100
)

// Условия получения пользовательской награды.
const (
	// ClaimRateThreshold - недельный процент выполнения, который нужно
	// строго превысить. Ровно 80 - недостаточно.
	ClaimRateThreshold = 80.0
)

// ClaimWeekday - день недели, когда открыто окно получения наград.
const ClaimWeekday = time.Sunday

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyTitle - пустое название награды.
	ErrEmptyTitle = errors.New("reward title cannot be empty")

	// ErrInvalidCost - неположительная цена.
	ErrInvalidCost = errors.New("reward cost must be positive")

	// ErrAlreadyClaimed - награда уже получена.
	ErrAlreadyClaimed = errors.New("reward already claimed")

	// ErrRewardNotFound - награда не найдена.
	ErrRewardNotFound = errors.New("reward not found")

	// ErrNotSunday - окно получения наград закрыто.
	ErrNotSunday = errors.New("rewards can only be claimed on sunday")

	// ErrRateTooLow - недельный процент выполнения не превысил порог.
	ErrRateTooLow = errors.New("weekly completion rate is not above threshold")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: REWARD
// ══════════════════════════════════════════════════════════════════════════════

// Reward - пользовательская награда: то, чем игрок сам себя радует
// за хорошую неделю.
type Reward struct {
	// ID - уникальный идентификатор (UUID в строковом формате).
	ID string

	// OwnerID - владелец награды.
	OwnerID shared.TelegramID

	// Title - название награды.
	Title string

	// Cost - цена в очках.
	Cost int

	// Claimed - получена ли награда. Награда одноразовая.
	Claimed bool

	// ClaimedAt - момент получения (nil, если не получена).
	ClaimedAt *time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// NewRewardParams содержит параметры для создания награды.
type NewRewardParams struct {
	ID      string
	OwnerID shared.TelegramID
	Title   string
	Cost    int
}

// NewReward создаёт новую награду с валидацией всех полей.
func NewReward(params NewRewardParams) (*Reward, error) {
	if params.ID == "" {
		return nil, errors.New("reward id is required")
	}
	if !params.OwnerID.IsValid() {
		return nil, errors.New("invalid owner id")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if params.Cost <= 0 {
		return nil, ErrInvalidCost
	}

	return &Reward{
		ID:        params.ID,
		OwnerID:   params.OwnerID,
		Title:     title,
		Cost:      params.Cost,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// CheckClaimWindow проверяет условия получения: воскресенье в зоне бота
// и недельный процент выполнения строго выше порога. Порядок проверок
// фиксированный: сначала день недели, потом процент. Средства проверяет
// вызывающая сторона после окна.
func CheckClaimWindow(now time.Time, weeklyRate float64) error {
	if now.Weekday() != ClaimWeekday {
		return ErrNotSunday
	}
	if weeklyRate <= ClaimRateThreshold {
		return ErrRateTooLow
	}
	return nil
}

// Claim отмечает награду полученной. Повторное получение - ошибка.
func (r *Reward) Claim(at time.Time) error {
	if r.Claimed {
		return ErrAlreadyClaimed
	}
	r.Claimed = true
	claimedAt := at.UTC()
	r.ClaimedAt = &claimedAt
	return nil
}
