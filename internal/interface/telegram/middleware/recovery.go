package middleware

import (
	"log/slog"
	"runtime/debug"
)

// ══════════════════════════════════════════════════════════════════════════════
// PANIC RECOVERY
// A panicking handler must not take down the polling loop.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryResult is the outcome of a recovered handler invocation.
type RecoveryResult struct {
	// Recovered is true when a panic was caught.
	Recovered bool

	// Err is the error returned by the handler (nil after a panic).
	Err error

	// UserMessage is the text to show the user after a panic.
	UserMessage string
}

// RecoveryMiddleware catches panics from handlers.
type RecoveryMiddleware struct {
	logger *slog.Logger
}

// NewRecoveryMiddleware creates the middleware.
func NewRecoveryMiddleware(logger *slog.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger: logger.With("component", "recovery_middleware"),
	}
}

// Run executes fn, converting a panic into a RecoveryResult.
func (m *RecoveryMiddleware) Run(operation string, fn func() error) (result RecoveryResult) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result = RecoveryResult{
				Recovered:   true,
				UserMessage: "😵 Что-то сломалось. Мы уже в курсе, попробуй ещё раз.",
			}
		}
	}()

	return RecoveryResult{Err: fn()}
}
