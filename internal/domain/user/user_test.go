package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/questlog/questlog-bot/internal/domain/task"
)

func newTestUser(t *testing.T) *User {
	t.Helper()
	u, err := NewUser(NewUserParams{TelegramID: 42, Username: "tester"})
	assert.NoError(t, err)
	return u
}

func TestNewUserDefaults(t *testing.T) {
	u := newTestUser(t)

	assert.Equal(t, Level(1), u.Level)
	assert.Equal(t, XP(0), u.XP)
	assert.Equal(t, HP(100), u.HP)
	assert.Equal(t, Points(0), u.Points)
	assert.False(t, u.ShieldActive)
	assert.False(t, u.PepperMode)
	assert.Nil(t, u.LastPerfectDate)
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser(NewUserParams{TelegramID: 0, Username: "x"})
	assert.ErrorIs(t, err, ErrInvalidTelegramID)

	_, err = NewUser(NewUserParams{TelegramID: 1, Username: "   "})
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestApplyGrantLevelUp(t *testing.T) {
	u := newTestUser(t)
	u.XP = 80

	out := u.ApplyGrant(Grant{XP: 50})

	assert.Equal(t, Level(2), u.Level)
	assert.Equal(t, XP(30), u.XP)
	assert.Equal(t, 1, out.LevelsGained)
}

func TestApplyGrantMultiLevel(t *testing.T) {
	u := newTestUser(t)
	u.XP = 90

	// 340 опыта: 340-100=240 (уровень 2), 240-200=40 (уровень 3),
	// 40 < 300 - стоп.
	out := u.ApplyGrant(Grant{XP: 250})

	assert.Equal(t, Level(3), u.Level)
	assert.Equal(t, XP(40), u.XP)
	assert.Equal(t, 2, out.LevelsGained)
}

func TestApplyGrantThresholdScalesWithLevel(t *testing.T) {
	u := newTestUser(t)
	u.Level = 2
	u.XP = 80

	// Порог второго уровня - 200: 130 опыта уровень не поднимают.
	out := u.ApplyGrant(Grant{XP: 50})

	assert.Equal(t, Level(2), u.Level)
	assert.Equal(t, XP(130), u.XP)
	assert.Equal(t, 0, out.LevelsGained)
	assert.NoError(t, u.Validate())
}

func TestApplyGrantHealCap(t *testing.T) {
	u := newTestUser(t)
	u.HP = 98

	u.ApplyGrant(Grant{XP: 5, Points: 2, Heal: 5})

	assert.Equal(t, HP(100), u.HP)
	assert.Equal(t, Points(2), u.Points)
}

func TestApplyPenaltyFloors(t *testing.T) {
	u := newTestUser(t)
	u.HP = 10
	u.Points = 3

	out := u.ApplyPenalty(Penalty{HP: 20, Points: 5})

	assert.Equal(t, HP(0), u.HP)
	assert.Equal(t, Points(0), u.Points)
	assert.Equal(t, 10, out.HPLost)
	assert.Equal(t, 3, out.PointsLost)
	assert.True(t, out.KnockedOut)
	assert.True(t, u.IsKnockedOut())
}

func TestShieldConsumesFirstHPPenaltyOnly(t *testing.T) {
	u := newTestUser(t)
	u.Points = 100
	assert.NoError(t, u.ActivateShield())

	// Первый штраф: щит гасит урон по здоровью, очки списываются.
	out := u.ApplyPenalty(Penalty{HP: 20, Points: 5})
	assert.True(t, out.ShieldConsumed)
	assert.Equal(t, 0, out.HPLost)
	assert.Equal(t, HP(100), u.HP)
	assert.Equal(t, Points(95), u.Points)
	assert.False(t, u.ShieldActive)

	// Второй штраф в том же расчёте проходит полностью.
	out = u.ApplyPenalty(Penalty{HP: 10, Points: 3})
	assert.False(t, out.ShieldConsumed)
	assert.Equal(t, HP(90), u.HP)
	assert.Equal(t, Points(92), u.Points)
}

func TestShieldIgnoresPointsOnlyPenalty(t *testing.T) {
	u := newTestUser(t)
	u.Points = 10
	assert.NoError(t, u.ActivateShield())

	// Штраф без урона по здоровью щит не трогает.
	out := u.ApplyPenalty(Penalty{HP: 0, Points: 2})
	assert.False(t, out.ShieldConsumed)
	assert.True(t, u.ShieldActive)
	assert.Equal(t, Points(8), u.Points)
}

func TestSpendPoints(t *testing.T) {
	u := newTestUser(t)
	u.Points = 50

	assert.NoError(t, u.SpendPoints(50))
	assert.Equal(t, Points(0), u.Points)

	err := u.SpendPoints(1)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, Points(0), u.Points)
}

func TestActivateShieldTwice(t *testing.T) {
	u := newTestUser(t)
	assert.NoError(t, u.ActivateShield())
	assert.ErrorIs(t, u.ActivateShield(), ErrShieldAlreadyActive)
}

func TestPerfectDayStreak(t *testing.T) {
	u := newTestUser(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	u.RecordPerfectDay(day)
	u.RecordPerfectDay(day.AddDate(0, 0, 1))
	assert.Equal(t, 2, u.PepperStreak)
	assert.False(t, u.PepperMode)

	// Третий идеальный день подряд включает перец.
	u.RecordPerfectDay(day.AddDate(0, 0, 2))
	assert.Equal(t, 3, u.PepperStreak)
	assert.True(t, u.PepperMode)
	assert.NotNil(t, u.LastPerfectDate)

	// Неидеальный день всё сбрасывает.
	u.RecordImperfectDay()
	assert.Equal(t, 0, u.PepperStreak)
	assert.False(t, u.PepperMode)
}

func TestImperfectDayDisablesPurchasedPepper(t *testing.T) {
	u := newTestUser(t)
	assert.NoError(t, u.ActivatePepper())

	u.RecordImperfectDay()

	assert.False(t, u.PepperMode)
}

func TestRewardTableAwards(t *testing.T) {
	table := DefaultRewardTable()

	tests := []struct {
		name     string
		category task.Category
		pepper   bool
		want     Grant
	}{
		{"focus", task.CategoryFocus, false, Grant{XP: 50, Points: 20, Heal: 0}},
		{"important", task.CategoryImportant, false, Grant{XP: 20, Points: 10, Heal: 0}},
		{"wish", task.CategoryWish, false, Grant{XP: 5, Points: 2, Heal: 5}},
		{"focus pepper", task.CategoryFocus, true, Grant{XP: 75, Points: 30, Heal: 0}},
		{"important pepper", task.CategoryImportant, true, Grant{XP: 30, Points: 15, Heal: 0}},
		// Усечение: 5*1.5=7.5 -> 7, 2*1.5=3.0 -> 3; лечение без множителя.
		{"wish pepper", task.CategoryWish, true, Grant{XP: 7, Points: 3, Heal: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Award(tt.category, tt.pepper))
		})
	}
}

func TestRewardTablePenalties(t *testing.T) {
	table := DefaultRewardTable()

	assert.Equal(t, Penalty{HP: 20, Points: 5}, table.PenaltyFor(task.CategoryFocus))
	assert.Equal(t, Penalty{HP: 10, Points: 3}, table.PenaltyFor(task.CategoryImportant))
	assert.Equal(t, Penalty{HP: 0, Points: 2}, table.PenaltyFor(task.CategoryWish))
}

func TestFocusPepperGrantFullCycle(t *testing.T) {
	u := newTestUser(t)
	u.PepperMode = true
	table := DefaultRewardTable()

	g := table.Award(task.CategoryFocus, u.PepperMode)
	u.ApplyGrant(g)

	assert.Equal(t, XP(75), u.XP)
	assert.Equal(t, Points(30), u.Points)
	assert.Equal(t, HP(100), u.HP)
}
