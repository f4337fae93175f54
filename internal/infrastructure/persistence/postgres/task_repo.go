package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/task"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// TaskRepository is the PostgreSQL implementation of task.Repository.
type TaskRepository struct {
	conn *Connection
}

// NewTaskRepository creates the repository.
func NewTaskRepository(conn *Connection) *TaskRepository {
	return &TaskRepository{conn: conn}
}

const taskColumns = `id, owner_id, title, category, reminder_time,
	completed, completed_at, created_date, penalized, created_at`

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.conn.pool.Exec(ctx, `
		INSERT INTO tasks (id, owner_id, title, category, reminder_time,
			completed, completed_at, created_date, penalized, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, int64(t.OwnerID), t.Title, string(t.Category), t.ReminderTime.String(),
		t.Completed, t.CompletedAt, t.CreatedDate, t.Penalized, t.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("postgres: create task: %w", err)
	}
	return nil
}

// GetByID loads a task by its identifier.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*task.Task, error) {
	row := r.conn.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// Update persists the mutated task state.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	tag, err := r.conn.pool.Exec(ctx, `
		UPDATE tasks SET
			title = $2,
			category = $3,
			reminder_time = $4,
			completed = $5,
			completed_at = $6,
			penalized = $7
		WHERE id = $1`,
		t.ID, t.Title, string(t.Category), t.ReminderTime.String(),
		t.Completed, t.CompletedAt, t.Penalized,
	)
	if err != nil {
		return fmt.Errorf("postgres: update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// Delete removes an owner's task.
func (r *TaskRepository) Delete(ctx context.Context, owner shared.TelegramID, id string) error {
	tag, err := r.conn.pool.Exec(ctx,
		`DELETE FROM tasks WHERE owner_id = $1 AND id = $2`, int64(owner), id)
	if err != nil {
		return fmt.Errorf("postgres: delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// ListByDay returns an owner's tasks created on the given day, oldest first.
func (r *TaskRepository) ListByDay(ctx context.Context, owner shared.TelegramID, day time.Time) ([]*task.Task, error) {
	rows, err := r.conn.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE owner_id = $1 AND created_date = $2
		ORDER BY created_at`,
		int64(owner), timeutil.StartOfDay(day))
	if err != nil {
		return nil, fmt.Errorf("postgres: list tasks by day: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MarkDayPenalized flags every pending unpenalized task of the day and
// returns how many rows were touched. Re-running it is a no-op.
func (r *TaskRepository) MarkDayPenalized(ctx context.Context, owner shared.TelegramID, day time.Time) (int, error) {
	tag, err := r.conn.pool.Exec(ctx, `
		UPDATE tasks SET penalized = TRUE
		WHERE owner_id = $1 AND created_date = $2
		  AND NOT completed AND NOT penalized`,
		int64(owner), timeutil.StartOfDay(day))
	if err != nil {
		return 0, fmt.Errorf("postgres: mark day penalized: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CompletionStats counts completed and total tasks created in [from, to].
func (r *TaskRepository) CompletionStats(ctx context.Context, owner shared.TelegramID, from, to time.Time) (done, total int, err error) {
	err = r.conn.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE completed), COUNT(*)
		FROM tasks
		WHERE owner_id = $1 AND created_date BETWEEN $2 AND $3`,
		int64(owner), timeutil.StartOfDay(from), timeutil.StartOfDay(to)).Scan(&done, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres: completion stats: %w", err)
	}
	return done, total, nil
}

// scanTask maps a row to the domain entity.
func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t        task.Task
		ownerID  int64
		category string
		reminder string
		created  time.Time
	)

	err := row.Scan(
		&t.ID, &ownerID, &t.Title, &category, &reminder,
		&t.Completed, &t.CompletedAt, &created, &t.Penalized, &t.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, task.ErrTaskNotFound
		}
		return nil, fmt.Errorf("postgres: scan task: %w", err)
	}

	t.OwnerID = shared.TelegramID(ownerID)
	t.Category = task.Category(category)
	if reminder != "" {
		rt, err := task.ParseReminderTime(reminder)
		if err != nil {
			return nil, fmt.Errorf("postgres: task %s has bad reminder %q: %w", t.ID, reminder, err)
		}
		t.ReminderTime = rt
	}
	t.CreatedDate = timeutil.Date(created.Year(), int(created.Month()), created.Day())
	return &t, nil
}
