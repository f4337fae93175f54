// Package user содержит доменную модель игрока: уровень, опыт, здоровье,
// очки, щит и режим перца. Это ядро бизнес-логики - здесь нет внешних
// зависимостей.
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// XP представляет очки опыта в пределах текущего уровня.
// После нормализации всегда лежит в диапазоне [0, порог уровня).
type XP int

// IsValidFor проверяет, что XP находится в допустимом диапазоне
// для данного уровня.
func (x XP) IsValidFor(l Level) bool {
	return x >= 0 && int(x) < l.Threshold()
}

// Level представляет уровень игрока. Уровень никогда не уменьшается.
type Level int

// IsValid проверяет, что уровень не меньше первого.
func (l Level) IsValid() bool {
	return l >= 1
}

// Threshold возвращает порог опыта для перехода с этого уровня на
// следующий: уровень × 100. Чем выше уровень, тем дороже следующий.
func (l Level) Threshold() int {
	return int(l) * XPThresholdFactor
}

// HP представляет здоровье игрока в диапазоне [0, 100].
type HP int

// IsValid проверяет, что HP находится в допустимом диапазоне.
func (h HP) IsValid() bool {
	return h >= 0 && h <= MaxHP
}

// Points представляет накопленные очки (валюта магазина).
type Points int

// IsValid проверяет, что очки неотрицательные.
func (p Points) IsValid() bool {
	return p >= 0
}

// Константы прогрессии.
const (
	// XPThresholdFactor - множитель порога уровня: порог = уровень × 100.
	XPThresholdFactor = 100

	// MaxHP - максимальное здоровье.
	MaxHP = 100

	// StartLevel - уровень нового игрока.
	StartLevel = 1

	// PepperStreakThreshold - сколько идеальных дней подряд включают режим перца.
	PepperStreakThreshold = 3
)

// ══════════════════════════════════════════════════════════════════════════════
// GRANTS & PENALTIES
// ══════════════════════════════════════════════════════════════════════════════

// Grant - начисление за выполненную задачу: опыт, очки и лечение.
// Применяется атомарно: либо всё, либо ничего.
type Grant struct {
	XP     int
	Points int
	Heal   int
}

// IsZero возвращает true, если начисление пустое.
func (g Grant) IsZero() bool {
	return g.XP == 0 && g.Points == 0 && g.Heal == 0
}

// Penalty - штраф за невыполненную задачу: потеря здоровья и очков.
type Penalty struct {
	HP     int
	Points int
}

// PenaltyOutcome описывает фактически применённый штраф.
// Щит может поглотить урон по здоровью, поэтому фактические потери
// могут отличаться от номинальных.
type PenaltyOutcome struct {
	HPLost         int
	PointsLost     int
	ShieldConsumed bool
	KnockedOut     bool
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTelegramID - невалидный Telegram ID.
	ErrInvalidTelegramID = errors.New("invalid telegram id: must be positive")

	// ErrInvalidUsername - невалидное имя пользователя.
	ErrInvalidUsername = errors.New("invalid username: must be 1-100 chars")

	// ErrInsufficientPoints - не хватает очков на покупку.
	ErrInsufficientPoints = errors.New("not enough points")

	// ErrShieldAlreadyActive - щит уже активен.
	ErrShieldAlreadyActive = errors.New("shield is already active")

	// ErrPepperAlreadyActive - режим перца уже включён.
	ErrPepperAlreadyActive = errors.New("pepper mode is already active")

	// ErrUserNotFound - пользователь не найден.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists - пользователь уже существует.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// User - центральная сущность системы: игрок с RPG-состоянием.
type User struct {
	// TelegramID - идентификатор пользователя в Telegram (первичный ключ).
	TelegramID shared.TelegramID

	// Username - отображаемое имя из Telegram.
	Username string

	// Level - текущий уровень. Никогда не уменьшается.
	Level Level

	// XP - опыт в пределах текущего уровня, [0, уровень × 100).
	XP XP

	// HP - здоровье, [0, 100]. Ноль означает "нокаут" и ни на что
	// не влияет, кроме отображения.
	HP HP

	// Points - очки, валюта магазина наград.
	Points Points

	// ShieldActive - одноразовый щит: поглощает первый штраф по здоровью.
	ShieldActive bool

	// PepperMode - режим перца: множитель x1.5 к опыту и очкам.
	PepperMode bool

	// PepperStreak - сколько идеальных дней подряд.
	PepperStreak int

	// LastPerfectDate - дата последнего идеального дня (nil, если не было).
	LastPerfectDate *time.Time

	// CreatedAt - время регистрации.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewUserParams содержит параметры для создания нового игрока.
type NewUserParams struct {
	TelegramID shared.TelegramID
	Username   string
}

// NewUser создаёт нового игрока с начальным состоянием:
// уровень 1, 0 опыта, полное здоровье, 0 очков.
func NewUser(params NewUserParams) (*User, error) {
	if !params.TelegramID.IsValid() {
		return nil, ErrInvalidTelegramID
	}

	username := strings.TrimSpace(params.Username)
	if len(username) == 0 || len(username) > 100 {
		return nil, ErrInvalidUsername
	}

	now := time.Now().UTC()

	return &User{
		TelegramID: params.TelegramID,
		Username:   username,
		Level:      StartLevel,
		XP:         0,
		HP:         MaxHP,
		Points:     0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Validate проверяет инварианты состояния игрока.
func (u *User) Validate() error {
	if !u.TelegramID.IsValid() {
		return ErrInvalidTelegramID
	}
	if !u.Level.IsValid() {
		return errors.New("invalid level: must be >= 1")
	}
	if !u.XP.IsValidFor(u.Level) {
		return errors.New("invalid xp: must be in [0, level*100)")
	}
	if !u.HP.IsValid() {
		return errors.New("invalid hp: must be in [0, 100]")
	}
	if !u.Points.IsValid() {
		return errors.New("invalid points: must be non-negative")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// GrantOutcome описывает результат начисления, включая набранные уровни.
type GrantOutcome struct {
	LevelsGained int
	NewLevel     Level
	NewXP        XP
}

// ApplyGrant применяет начисление за выполненную задачу.
// Опыт сверх порога текущего уровня (уровень × 100) переносится дальше;
// одно крупное начисление может поднять сразу несколько уровней, каждый
// следующий порог дороже. Лечение не поднимает HP выше 100.
func (u *User) ApplyGrant(g Grant) GrantOutcome {
	levelsBefore := u.Level

	xp := int(u.XP) + g.XP
	for xp >= u.Level.Threshold() {
		xp -= u.Level.Threshold()
		u.Level++
	}
	u.XP = XP(xp)

	u.Points += Points(g.Points)

	hp := int(u.HP) + g.Heal
	if hp > MaxHP {
		hp = MaxHP
	}
	u.HP = HP(hp)

	u.UpdatedAt = time.Now().UTC()

	return GrantOutcome{
		LevelsGained: int(u.Level - levelsBefore),
		NewLevel:     u.Level,
		NewXP:        u.XP,
	}
}

// ApplyPenalty применяет штраф за невыполненную задачу.
// Активный щит поглощает первый штраф по здоровью и гаснет; потеря очков
// при этом всё равно применяется. Здоровье не опускается ниже нуля,
// очки не уходят в минус.
func (u *User) ApplyPenalty(p Penalty) PenaltyOutcome {
	outcome := PenaltyOutcome{}

	hpLoss := p.HP
	if u.ShieldActive && hpLoss > 0 {
		u.ShieldActive = false
		outcome.ShieldConsumed = true
		hpLoss = 0
	}

	hp := int(u.HP) - hpLoss
	if hp < 0 {
		hpLoss = int(u.HP)
		hp = 0
	}
	u.HP = HP(hp)
	outcome.HPLost = hpLoss

	pointsLoss := p.Points
	points := int(u.Points) - pointsLoss
	if points < 0 {
		pointsLoss = int(u.Points)
		points = 0
	}
	u.Points = Points(points)
	outcome.PointsLost = pointsLoss

	outcome.KnockedOut = u.HP == 0
	u.UpdatedAt = time.Now().UTC()

	return outcome
}

// SpendPoints списывает очки. Возвращает ошибку при нехватке средств,
// состояние при этом не меняется.
func (u *User) SpendPoints(cost int) error {
	if cost < 0 {
		return errors.New("cost cannot be negative")
	}
	if int(u.Points) < cost {
		return ErrInsufficientPoints
	}
	u.Points -= Points(cost)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ActivateShield включает одноразовый щит.
func (u *User) ActivateShield() error {
	if u.ShieldActive {
		return ErrShieldAlreadyActive
	}
	u.ShieldActive = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ActivatePepper включает режим перца вручную (покупка в магазине).
// Купленный перец живёт по тем же правилам, что и заработанный:
// любой неидеальный день его выключает.
func (u *User) ActivatePepper() error {
	if u.PepperMode {
		return ErrPepperAlreadyActive
	}
	u.PepperMode = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordPerfectDay фиксирует идеальный день: серия растёт, и с третьего
// дня подряд включается режим перца.
func (u *User) RecordPerfectDay(day time.Time) {
	u.PepperStreak++
	if u.PepperStreak >= PepperStreakThreshold {
		u.PepperMode = true
	}
	d := day
	u.LastPerfectDate = &d
	u.UpdatedAt = time.Now().UTC()
}

// RecordImperfectDay фиксирует неидеальный день: серия обнуляется,
// режим перца выключается.
func (u *User) RecordImperfectDay() {
	u.PepperStreak = 0
	u.PepperMode = false
	u.UpdatedAt = time.Now().UTC()
}

// IsKnockedOut возвращает true, если здоровье на нуле.
func (u *User) IsKnockedOut() bool {
	return u.HP == 0
}
