package reminder

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/questlog/questlog-bot/internal/application/notify"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type scheduledCall struct {
	key string
	at  time.Time
	fn  func(ctx context.Context)
}

// fakeQueue records scheduling calls and lets tests fire them by hand.
type fakeQueue struct {
	calls     []scheduledCall
	cancelled []string
}

func (q *fakeQueue) ScheduleAt(key string, at time.Time, fn func(ctx context.Context)) bool {
	q.calls = append(q.calls, scheduledCall{key: key, at: at, fn: fn})
	return true
}

func (q *fakeQueue) Cancel(key string) bool {
	q.cancelled = append(q.cancelled, key)
	return true
}

type fakeUserRepo struct {
	ids []shared.TelegramID
}

func (r *fakeUserRepo) Create(context.Context, *user.User) error { return nil }
func (r *fakeUserRepo) GetByTelegramID(context.Context, shared.TelegramID) (*user.User, error) {
	return nil, user.ErrUserNotFound
}
func (r *fakeUserRepo) Update(context.Context, *user.User) error { return nil }
func (r *fakeUserRepo) ListIDs(context.Context) ([]shared.TelegramID, error) {
	return r.ids, nil
}
func (r *fakeUserRepo) Count(context.Context) (int, error) { return len(r.ids), nil }

type fakeTaskRepo struct {
	tasks map[string]*task.Task
}

func (r *fakeTaskRepo) Create(context.Context, *task.Task) error { return nil }
func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*task.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t, nil
}
func (r *fakeTaskRepo) Update(context.Context, *task.Task) error { return nil }
func (r *fakeTaskRepo) Delete(context.Context, shared.TelegramID, string) error {
	return nil
}
func (r *fakeTaskRepo) ListByDay(_ context.Context, owner shared.TelegramID, day time.Time) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range r.tasks {
		if t.OwnerID == owner && timeutil.IsSameDay(t.CreatedDate, day) {
			out = append(out, t)
		}
	}
	return out, nil
}
func (r *fakeTaskRepo) MarkDayPenalized(context.Context, shared.TelegramID, time.Time) (int, error) {
	return 0, nil
}
func (r *fakeTaskRepo) CompletionStats(context.Context, shared.TelegramID, time.Time, time.Time) (int, int, error) {
	return 0, 0, nil
}

func mkTask(t *testing.T, id string, owner shared.TelegramID, reminder task.ReminderTime, day time.Time) *task.Task {
	t.Helper()
	tk, err := task.NewTask(task.NewTaskParams{
		ID: id, OwnerID: owner, Title: "задача", Category: task.CategoryFocus,
		ReminderTime: reminder, Day: day,
	})
	assert.NoError(t, err)
	return tk
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestScheduleTaskKeyedByTaskID(t *testing.T) {
	queue := &fakeQueue{}
	repo := &fakeTaskRepo{tasks: map[string]*task.Task{}}
	svc := NewService(queue, &fakeUserRepo{}, repo, notify.Func(nil), slog.Default())

	day := timeutil.StartOfDay(timeutil.Now())
	tk := mkTask(t, "t1", 1, "23:59", day)
	svc.ScheduleTask(tk)

	if assert.Len(t, queue.calls, 1) {
		assert.Equal(t, "reminder:t1", queue.calls[0].key)
		assert.Equal(t, 23, timeutil.ToBotTZ(queue.calls[0].at).Hour())
	}
}

func TestScheduleTaskWithoutReminderIsNoop(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewService(queue, &fakeUserRepo{}, &fakeTaskRepo{}, notify.Func(nil), slog.Default())

	tk := mkTask(t, "t1", 1, "", timeutil.Now())
	svc.ScheduleTask(tk)

	assert.Empty(t, queue.calls)
}

func TestCancelTask(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewService(queue, &fakeUserRepo{}, &fakeTaskRepo{}, notify.Func(nil), slog.Default())

	svc.CancelTask("t1")
	assert.Equal(t, []string{"reminder:t1"}, queue.cancelled)
}

func TestFireSkipsCompletedAndDeleted(t *testing.T) {
	day := timeutil.StartOfDay(timeutil.Now())
	done := mkTask(t, "done", 1, "23:59", day)
	assert.NoError(t, done.Complete(timeutil.Now()))
	live := mkTask(t, "live", 1, "23:59", day)

	repo := &fakeTaskRepo{tasks: map[string]*task.Task{"done": done, "live": live}}

	var delivered []shared.TelegramID
	notifier := notify.Func(func(_ context.Context, to shared.TelegramID, text string) error {
		delivered = append(delivered, to)
		assert.Contains(t, text, "Напоминание")
		return nil
	})

	queue := &fakeQueue{}
	svc := NewService(queue, &fakeUserRepo{}, repo, notifier, slog.Default())

	for _, tk := range []*task.Task{done, live} {
		svc.ScheduleTask(tk)
	}
	assert.Len(t, queue.calls, 2)

	// Fire everything; deleted task on top.
	svc.ScheduleTask(mkTask(t, "gone", 1, "23:58", day))
	for _, c := range queue.calls {
		c.fn(context.Background())
	}

	// Only the live task produced a message.
	assert.Equal(t, []shared.TelegramID{1}, delivered)
}

func TestRestoreAllSchedulesOnlyPendingFuture(t *testing.T) {
	now := timeutil.Now()
	day := timeutil.StartOfDay(now)

	// Времена вокруг "сейчас": прошедшее и будущее в пределах дня.
	past := task.ReminderTime(timeutil.FormatTime(now.Add(-time.Hour)))
	future := task.ReminderTime(timeutil.FormatTime(now.Add(time.Hour)))
	if now.Hour() == 0 {
		past = ""
	}
	if now.Hour() == 23 {
		future = ""
	}

	completed := mkTask(t, "completed", 1, future, day)
	assert.NoError(t, completed.Complete(now))

	repo := &fakeTaskRepo{tasks: map[string]*task.Task{
		"future":      mkTask(t, "future", 1, future, day),
		"past":        mkTask(t, "past", 1, past, day),
		"no-reminder": mkTask(t, "no-reminder", 1, "", day),
		"completed":   completed,
		"other-user":  mkTask(t, "other-user", 2, future, day),
	}}

	queue := &fakeQueue{}
	svc := NewService(queue, &fakeUserRepo{ids: []shared.TelegramID{1, 2}}, repo, notify.Func(nil), slog.Default())

	restored, err := svc.RestoreAll(context.Background())
	assert.NoError(t, err)

	if future == "" {
		assert.Equal(t, 0, restored)
		return
	}

	assert.Equal(t, 2, restored)
	keys := make([]string, 0, len(queue.calls))
	for _, c := range queue.calls {
		keys = append(keys, c.key)
	}
	assert.ElementsMatch(t, []string{"reminder:future", "reminder:other-user"}, keys)
}
