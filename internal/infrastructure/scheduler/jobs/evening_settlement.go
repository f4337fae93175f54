// Package jobs contains implementations of the bot's scheduled jobs.
package jobs

import (
	"context"
	"log/slog"

	"github.com/questlog/questlog-bot/internal/application/settlement"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENING SETTLEMENT JOB
// Runs the daily reckoning at 21:00 bot time: penalties for unfinished
// tasks, streak and pepper accounting, per-user summaries.
// ══════════════════════════════════════════════════════════════════════════════

// EveningSettlementJob triggers the settlement engine for the current day.
type EveningSettlementJob struct {
	engine *settlement.Engine
	logger *slog.Logger
}

// NewEveningSettlementJob creates the job.
func NewEveningSettlementJob(engine *settlement.Engine, logger *slog.Logger) *EveningSettlementJob {
	return &EveningSettlementJob{
		engine: engine,
		logger: logger.With("job", "evening_settlement"),
	}
}

// Name implements scheduler.Job.
func (j *EveningSettlementJob) Name() string {
	return "evening_settlement"
}

// Description implements scheduler.Job.
func (j *EveningSettlementJob) Description() string {
	return "Вечерний расчёт дня: штрафы, серии, сводки"
}

// Run implements scheduler.Job.
func (j *EveningSettlementJob) Run(ctx context.Context) error {
	stats, err := j.engine.SettleDay(ctx, timeutil.Now())
	if err != nil {
		return err
	}

	j.logger.Info("evening settlement done",
		"settled", stats.UsersSettled,
		"skipped", stats.UsersSkipped,
		"penalties", stats.PenaltiesApplied,
		"perfect_days", stats.PerfectDays,
	)
	return nil
}
