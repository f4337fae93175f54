package user

import (
	"github.com/questlog/questlog-bot/internal/domain/task"
)

// ══════════════════════════════════════════════════════════════════════════════
// REWARD TABLE
// Таблица наград и штрафов по категориям задач. Фиксированная, без
// конфигурации: баланс игры - часть доменной модели.
// ══════════════════════════════════════════════════════════════════════════════

// PepperMultiplier - множитель режима перца для опыта и очков.
// Результат усекается к нулю: 75 из 50, 30 из 20, 7 из 5.
const PepperMultiplier = 1.5

// RewardTable хранит награды и штрафы по категориям.
type RewardTable struct {
	awards    map[task.Category]Grant
	penalties map[task.Category]Penalty
}

// DefaultRewardTable возвращает стандартный баланс игры.
func DefaultRewardTable() *RewardTable {
	return &RewardTable{
		awards: map[task.Category]Grant{
			task.CategoryFocus:     {XP: 50, Points: 20, Heal: 0},
			task.CategoryImportant: {XP: 20, Points: 10, Heal: 0},
			task.CategoryWish:      {XP: 5, Points: 2, Heal: 5},
		},
		penalties: map[task.Category]Penalty{
			task.CategoryFocus:     {HP: 20, Points: 5},
			task.CategoryImportant: {HP: 10, Points: 3},
			task.CategoryWish:      {HP: 0, Points: 2},
		},
	}
}

// Award возвращает начисление за выполненную задачу категории c.
// В режиме перца опыт и очки умножаются на 1.5 с усечением;
// лечение множитель не затрагивает.
func (t *RewardTable) Award(c task.Category, pepper bool) Grant {
	g := t.awards[c]
	if pepper {
		g.XP = int(float64(g.XP) * PepperMultiplier)
		g.Points = int(float64(g.Points) * PepperMultiplier)
	}
	return g
}

// PenaltyFor возвращает штраф за невыполненную задачу категории c.
func (t *RewardTable) PenaltyFor(c task.Category) Penalty {
	return t.penalties[c]
}
