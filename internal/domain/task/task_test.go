package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseReminderTime(t *testing.T) {
	tests := []struct {
		input string
		want  ReminderTime
		ok    bool
	}{
		{"16:00", "16:00", true},
		{"16.00", "16:00", true},
		{"16 00", "16:00", true},
		{"9:05", "09:05", true},
		{"  7:30  ", "07:30", true},
		{"23:59", "23:59", true},
		{"24:00", "", false},
		{"12:60", "", false},
		{"1600", "", false},
		{"abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReminderTime(tt.input)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				assert.ErrorIs(t, err, ErrInvalidReminderTime)
			}
		})
	}
}

func TestReminderTimeOn(t *testing.T) {
	tz := time.FixedZone("Europe/Moscow", 3*60*60)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, tz)

	r, err := ParseReminderTime("16:30")
	assert.NoError(t, err)

	due := r.On(day)
	assert.Equal(t, 16, due.Hour())
	assert.Equal(t, 30, due.Minute())
	assert.Equal(t, day.Location(), due.Location())
}

func TestNewTaskValidation(t *testing.T) {
	day := time.Now()

	_, err := NewTask(NewTaskParams{ID: "", OwnerID: 1, Title: "x", Category: CategoryFocus, Day: day})
	assert.Error(t, err)

	_, err = NewTask(NewTaskParams{ID: "t1", OwnerID: 1, Title: "  ", Category: CategoryFocus, Day: day})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = NewTask(NewTaskParams{ID: "t1", OwnerID: 1, Title: "x", Category: "urgent", Day: day})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	tk, err := NewTask(NewTaskParams{ID: "t1", OwnerID: 1, Title: " написать отчёт ", Category: CategoryImportant, Day: day})
	assert.NoError(t, err)
	assert.Equal(t, "написать отчёт", tk.Title)
	assert.False(t, tk.Completed)
	assert.False(t, tk.Penalized)
	assert.Equal(t, 0, tk.CreatedDate.Hour())
}

func TestCompleteIsOneShot(t *testing.T) {
	tk, err := NewTask(NewTaskParams{ID: "t1", OwnerID: 1, Title: "x", Category: CategoryFocus, Day: time.Now()})
	assert.NoError(t, err)

	assert.NoError(t, tk.Complete(time.Now()))
	assert.True(t, tk.Completed)
	assert.NotNil(t, tk.CompletedAt)

	assert.ErrorIs(t, tk.Complete(time.Now()), ErrAlreadyCompleted)
}

func TestReminderDue(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tk, err := NewTask(NewTaskParams{ID: "t1", OwnerID: 1, Title: "x", Category: CategoryWish, Day: day})
	assert.NoError(t, err)

	_, ok := tk.ReminderDue()
	assert.False(t, ok)

	tk.ReminderTime = "08:15"
	due, ok := tk.ReminderDue()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC), due)
}

func TestCategory(t *testing.T) {
	assert.True(t, CategoryFocus.IsValid())
	assert.True(t, CategoryImportant.IsValid())
	assert.True(t, CategoryWish.IsValid())
	assert.False(t, Category("chore").IsValid())

	assert.Equal(t, "🎯", CategoryFocus.Emoji())
	assert.Equal(t, "Фокус", CategoryFocus.TitleRu())
}
