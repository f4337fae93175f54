package settlement

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/questlog/questlog-bot/internal/application/notify"
	"github.com/questlog/questlog-bot/internal/application/userlock"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ─────────────────────────────────────────────────────────────────────────────

type memUserRepo struct {
	mu    sync.Mutex
	users map[shared.TelegramID]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[shared.TelegramID]*user.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.TelegramID]; ok {
		return user.ErrUserAlreadyExists
	}
	cp := *u
	r.users[u.TelegramID] = &cp
	return nil
}

func (r *memUserRepo) GetByTelegramID(_ context.Context, id shared.TelegramID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.TelegramID]; !ok {
		return user.ErrUserNotFound
	}
	cp := *u
	r.users[u.TelegramID] = &cp
	return nil
}

func (r *memUserRepo) ListIDs(_ context.Context) ([]shared.TelegramID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]shared.TelegramID, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memUserRepo) Count(_ context.Context) (int, error) {
	return len(r.users), nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*task.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*task.Task)}
}

func (r *memTaskRepo) Create(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTaskRepo) Update(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return task.ErrTaskNotFound
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, owner shared.TelegramID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != owner {
		return task.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) ListByDay(_ context.Context, owner shared.TelegramID, day time.Time) ([]*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*task.Task
	for _, t := range r.tasks {
		if t.OwnerID == owner && timeutil.IsSameDay(t.CreatedDate, day) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTaskRepo) MarkDayPenalized(_ context.Context, owner shared.TelegramID, day time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if t.OwnerID == owner && timeutil.IsSameDay(t.CreatedDate, day) && !t.Completed && !t.Penalized {
			t.Penalized = true
			n++
		}
	}
	return n, nil
}

func (r *memTaskRepo) CompletionStats(_ context.Context, owner shared.TelegramID, from, to time.Time) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	done, total := 0, 0
	for _, t := range r.tasks {
		if t.OwnerID != owner || t.CreatedDate.Before(from) || t.CreatedDate.After(to) {
			continue
		}
		total++
		if t.Completed {
			done++
		}
	}
	return done, total, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

type sentMessage struct {
	to   shared.TelegramID
	text string
}

func newEngine(t *testing.T, users *memUserRepo, tasks *memTaskRepo, sent *[]sentMessage) *Engine {
	t.Helper()
	notifier := notify.Func(func(_ context.Context, to shared.TelegramID, text string) error {
		*sent = append(*sent, sentMessage{to: to, text: text})
		return nil
	})
	return NewEngine(users, tasks, user.DefaultRewardTable(), userlock.NewRegistry(), notifier, slog.Default())
}

func addUser(t *testing.T, repo *memUserRepo, id shared.TelegramID) *user.User {
	t.Helper()
	u, err := user.NewUser(user.NewUserParams{TelegramID: id, Username: "player"})
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), u))
	return u
}

func addTask(t *testing.T, repo *memTaskRepo, id string, owner shared.TelegramID, cat task.Category, day time.Time, completed bool) {
	t.Helper()
	tk, err := task.NewTask(task.NewTaskParams{ID: id, OwnerID: owner, Title: "задача " + id, Category: cat, Day: day})
	assert.NoError(t, err)
	if completed {
		assert.NoError(t, tk.Complete(day.Add(12*time.Hour)))
	}
	assert.NoError(t, repo.Create(context.Background(), tk))
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestSettleDayAppliesPenalties(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	day := timeutil.Date(2025, 3, 10)
	addUser(t, users, 1)
	addTask(t, tasks, "t1", 1, task.CategoryFocus, day, false)
	addTask(t, tasks, "t2", 1, task.CategoryImportant, day, false)
	addTask(t, tasks, "t3", 1, task.CategoryWish, day, true)

	stats, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.UsersSettled)
	assert.Equal(t, 2, stats.PenaltiesApplied)
	assert.Equal(t, 0, stats.PerfectDays)

	u, err := users.GetByTelegramID(context.Background(), 1)
	assert.NoError(t, err)
	// focus: -20 HP -5 pt, important: -10 HP -3 pt; очки не уходят в минус.
	assert.Equal(t, user.HP(70), u.HP)
	assert.Equal(t, user.Points(0), u.Points)
	assert.Equal(t, 0, u.PepperStreak)
	assert.False(t, u.PepperMode)

	assert.Len(t, sent, 1)
	assert.Equal(t, shared.TelegramID(1), sent[0].to)
}

func TestSettleDaySummaryListsFailedTasks(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	day := timeutil.Date(2025, 3, 10)
	addUser(t, users, 1)
	addTask(t, tasks, "t1", 1, task.CategoryFocus, day, false)
	addTask(t, tasks, "t2", 1, task.CategoryWish, day, false)
	addTask(t, tasks, "t3", 1, task.CategoryImportant, day, true)

	_, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)

	assert.Len(t, sent, 1)
	text := sent[0].text
	assert.Contains(t, text, "❌ Невыполненные:")
	assert.Contains(t, text, "задача t1")
	assert.Contains(t, text, "задача t2")
	assert.NotContains(t, text, "задача t3")
}

func TestSettleDayShieldAbsorbsFirstHPPenaltyOnly(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	day := timeutil.Date(2025, 3, 10)
	u := addUser(t, users, 1)
	u.Points = 100
	assert.NoError(t, u.ActivateShield())
	assert.NoError(t, users.Update(context.Background(), u))

	addTask(t, tasks, "t1", 1, task.CategoryFocus, day, false)
	addTask(t, tasks, "t2", 1, task.CategoryImportant, day, false)

	_, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)

	got, _ := users.GetByTelegramID(context.Background(), 1)
	// Щит гасит первый удар по HP, второй проходит; очки списываются оба раза.
	assert.Equal(t, user.HP(90), got.HP)
	assert.Equal(t, user.Points(92), got.Points)
	assert.False(t, got.ShieldActive)
}

func TestSettleDaySkipsUsersWithoutTasks(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	u := addUser(t, users, 1)
	u.PepperStreak = 2
	assert.NoError(t, users.Update(context.Background(), u))

	stats, err := engine.SettleDay(context.Background(), timeutil.Date(2025, 3, 10))
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.UsersSkipped)
	assert.Equal(t, 0, stats.UsersSettled)

	// День без задач не трогает ни серию, ни перец.
	got, _ := users.GetByTelegramID(context.Background(), 1)
	assert.Equal(t, 2, got.PepperStreak)
	assert.Empty(t, sent)
}

func TestSettleDayPerfectStreakToPepper(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	addUser(t, users, 1)

	for i := 0; i < 3; i++ {
		day := timeutil.Date(2025, 3, 10+i)
		addTask(t, tasks, "t"+timeutil.FormatDate(day), 1, task.CategoryFocus, day, true)

		stats, err := engine.SettleDay(context.Background(), day)
		assert.NoError(t, err)
		assert.Equal(t, 1, stats.PerfectDays)
	}

	u, _ := users.GetByTelegramID(context.Background(), 1)
	assert.Equal(t, 3, u.PepperStreak)
	assert.True(t, u.PepperMode)
	assert.NotNil(t, u.LastPerfectDate)
	assert.True(t, timeutil.IsSameDay(*u.LastPerfectDate, timeutil.Date(2025, 3, 12)))
}

func TestSettleDayImperfectResetsPurchasedPepper(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	day := timeutil.Date(2025, 3, 10)
	u := addUser(t, users, 1)
	assert.NoError(t, u.ActivatePepper())
	assert.NoError(t, users.Update(context.Background(), u))

	addTask(t, tasks, "t1", 1, task.CategoryWish, day, false)

	_, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)

	got, _ := users.GetByTelegramID(context.Background(), 1)
	assert.False(t, got.PepperMode)
	assert.Equal(t, 0, got.PepperStreak)
}

func TestSettleDayIsIdempotent(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	day := timeutil.Date(2025, 3, 10)
	u := addUser(t, users, 1)
	u.Points = 50
	assert.NoError(t, users.Update(context.Background(), u))
	addTask(t, tasks, "t1", 1, task.CategoryFocus, day, false)

	_, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)
	first, _ := users.GetByTelegramID(context.Background(), 1)

	// Повторный запуск того же дня ничего не меняет.
	stats, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.PenaltiesApplied)

	second, _ := users.GetByTelegramID(context.Background(), 1)
	assert.Equal(t, first.HP, second.HP)
	assert.Equal(t, first.Points, second.Points)
	assert.Equal(t, first.PepperStreak, second.PepperStreak)
}

func TestSettleDayPerfectRunTwiceCountsStreakOnce(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	var sent []sentMessage
	engine := newEngine(t, users, tasks, &sent)

	day := timeutil.Date(2025, 3, 10)
	addUser(t, users, 1)
	addTask(t, tasks, "t1", 1, task.CategoryFocus, day, true)

	_, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)
	_, err = engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)

	u, _ := users.GetByTelegramID(context.Background(), 1)
	assert.Equal(t, 1, u.PepperStreak)
}

func TestSettleDayNotifyFailureDoesNotAbortBatch(t *testing.T) {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()

	day := timeutil.Date(2025, 3, 10)
	addUser(t, users, 1)
	addUser(t, users, 2)
	addTask(t, tasks, "t1", 1, task.CategoryWish, day, false)
	addTask(t, tasks, "t2", 2, task.CategoryWish, day, false)

	notifier := notify.Func(func(_ context.Context, to shared.TelegramID, _ string) error {
		return errors.New("telegram down")
	})
	engine := NewEngine(users, tasks, user.DefaultRewardTable(), userlock.NewRegistry(), notifier, slog.Default())

	stats, err := engine.SettleDay(context.Background(), day)
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.UsersSettled)
	assert.Equal(t, 2, stats.NotifyFailures)

	// Штрафы применены несмотря на недоставленные сводки.
	u1, _ := users.GetByTelegramID(context.Background(), 1)
	u2, _ := users.GetByTelegramID(context.Background(), 2)
	assert.Equal(t, user.Points(0), u1.Points)
	assert.Equal(t, user.Points(0), u2.Points)
}
