package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCronPresets(t *testing.T) {
	evening, err := ParseCron(CronEveningSettlement)
	assert.NoError(t, err)
	assert.Equal(t, []int{0}, evening.minutes)
	assert.Equal(t, []int{21}, evening.hours)

	morning, err := ParseCron(CronMorningNudge)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 30}, morning.minutes)
	assert.Equal(t, []int{7, 8, 9, 10, 11, 12}, morning.hours)
}

func TestParseCronInvalid(t *testing.T) {
	for _, expr := range []string{
		"", "* * * *", "60 * * * *", "* 24 * * *", "x * * * *",
		"* a-b/5 * * *", "* x/5 * * *", "* 1-/5 * * *",
	} {
		_, err := ParseCron(expr)
		assert.Error(t, err, expr)
	}
}

func TestCronNext(t *testing.T) {
	evening := MustParseCron(CronEveningSettlement)

	// 20:59 -> 21:00 same day.
	from := time.Date(2025, 3, 10, 20, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC), evening.Next(from))

	// 21:00 exactly -> next day.
	from = time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 11, 21, 0, 0, 0, time.UTC), evening.Next(from))

	morning := MustParseCron(CronMorningNudge)

	// 12:30 is the last morning slot; after it the next is 07:00 tomorrow.
	from = time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC), morning.Next(from))

	// 07:10 -> 07:30 same day.
	from = time.Date(2025, 3, 10, 7, 10, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC), morning.Next(from))
}

func TestCronNextSundayOnly(t *testing.T) {
	weekly := MustParseCron("0 12 * * 0")

	// 2025-03-10 is a Monday; next Sunday noon is 2025-03-16.
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC), weekly.Next(from))
}

func TestOneShotQueueFires(t *testing.T) {
	q := NewOneShotQueue(OneShotConfig{MisfireGrace: time.Minute})
	q.Start(context.Background())
	defer q.Stop()

	fired := make(chan struct{})
	ok := q.ScheduleAt("r1", time.Now().Add(20*time.Millisecond), func(context.Context) {
		close(fired)
	})
	assert.True(t, ok)
	assert.True(t, q.IsPending("r1"))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot did not fire")
	}
	assert.False(t, q.IsPending("r1"))
}

func TestOneShotQueueRejectsPast(t *testing.T) {
	q := NewOneShotQueue(OneShotConfig{})
	q.Start(context.Background())
	defer q.Stop()

	ok := q.ScheduleAt("r1", time.Now().Add(-time.Second), func(context.Context) {
		t.Error("past-due one-shot must not fire")
	})
	assert.False(t, ok)
	assert.Equal(t, 0, q.Pending())
}

func TestOneShotQueueReplacesByKey(t *testing.T) {
	q := NewOneShotQueue(OneShotConfig{})
	q.Start(context.Background())
	defer q.Stop()

	var firstFired atomic.Bool
	secondFired := make(chan struct{})

	assert.True(t, q.ScheduleAt("r1", time.Now().Add(30*time.Millisecond), func(context.Context) {
		firstFired.Store(true)
	}))
	assert.True(t, q.ScheduleAt("r1", time.Now().Add(60*time.Millisecond), func(context.Context) {
		close(secondFired)
	}))
	assert.Equal(t, 1, q.Pending())

	select {
	case <-secondFired:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement one-shot did not fire")
	}
	assert.False(t, firstFired.Load())
}

func TestOneShotQueueCancel(t *testing.T) {
	q := NewOneShotQueue(OneShotConfig{})
	q.Start(context.Background())
	defer q.Stop()

	assert.True(t, q.ScheduleAt("r1", time.Now().Add(50*time.Millisecond), func(context.Context) {
		t.Error("cancelled one-shot must not fire")
	}))
	assert.True(t, q.Cancel("r1"))
	assert.False(t, q.Cancel("r1"))

	time.Sleep(120 * time.Millisecond)
}

func TestSchedulerRunsDueJob(t *testing.T) {
	s := New(Config{})

	var runs atomic.Int32
	job := JobFunc{
		JobName: "tick",
		Fn: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	// everySecond fires on every scheduler tick.
	assert.NoError(t, s.Register(job, everySecond{}, 0))
	assert.NoError(t, s.Start(context.Background()))
	defer func() { assert.NoError(t, s.Stop()) }()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)

	result, ok := s.LastRun("tick")
	if assert.True(t, ok) {
		assert.True(t, result.Success)
	}
}

// everySecond is a test schedule that is always due on the next second.
type everySecond struct{}

func (everySecond) Next(t time.Time) time.Time { return t.Add(time.Second) }
func (everySecond) String() string             { return "every second" }
