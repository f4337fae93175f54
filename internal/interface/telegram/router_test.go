package telegram

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/questlog/questlog-bot/internal/infrastructure/persistence/redis"
)

func TestRouteCommand(t *testing.T) {
	r := NewRouter(slog.Default())

	var got CommandContext
	r.Command("tasks", CommandFunc(func(ctx context.Context, cmd CommandContext) error {
		got = cmd
		return nil
	}))

	err := r.RouteCommand(context.Background(), "tasks", CommandContext{UserID: 42, Args: "today"})
	assert.NoError(t, err)
	assert.EqualValues(t, 42, got.UserID)
	assert.Equal(t, "today", got.Args)
}

func TestRouteCallbackLongestPrefix(t *testing.T) {
	r := NewRouter(slog.Default())

	var hit string
	var payload string
	record := func(name string) CallbackFunc {
		return func(ctx context.Context, cb CallbackContext) error {
			hit = name
			payload = cb.Payload
			return nil
		}
	}

	// "task:done:" is longer than "task:" and must win for its data.
	r.Callback("task:", record("generic"))
	r.Callback("task:done:", record("done"))

	err := r.RouteCallback(context.Background(), CallbackContext{Data: "task:done:abc-123"})
	assert.NoError(t, err)
	assert.Equal(t, "done", hit)
	assert.Equal(t, "abc-123", payload)

	err = r.RouteCallback(context.Background(), CallbackContext{Data: "task:other"})
	assert.NoError(t, err)
	assert.Equal(t, "generic", hit)
	assert.Equal(t, "other", payload)
}

func TestRouteCallbackUnknownIsIgnored(t *testing.T) {
	r := NewRouter(slog.Default())
	err := r.RouteCallback(context.Background(), CallbackContext{Data: "nope:123"})
	assert.NoError(t, err)
}

func TestRouteDialogByStepPrefix(t *testing.T) {
	r := NewRouter(slog.Default())

	var step string
	r.Dialog("add_task:", DialogFunc(func(ctx context.Context, d DialogContext) error {
		step = d.Dialog.Step
		return nil
	}))

	d := DialogContext{
		Text:   "купить хлеб",
		Dialog: &redis.Dialog{Step: "add_task:title", Data: map[string]string{}},
	}
	err := r.RouteDialog(context.Background(), d)
	assert.NoError(t, err)
	assert.Equal(t, "add_task:title", step)

	// A step from someone else's flow is logged and skipped, not an error.
	d.Dialog.Step = "add_reward:title"
	assert.NoError(t, r.RouteDialog(context.Background(), d))
}
