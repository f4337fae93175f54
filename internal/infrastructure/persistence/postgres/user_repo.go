package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/internal/domain/user"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository is the PostgreSQL implementation of user.Repository.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates the repository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `telegram_id, username, level, xp, hp, points,
	shield_active, pepper_mode, pepper_streak, last_perfect_date,
	created_at, updated_at`

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.conn.pool.Exec(ctx, `
		INSERT INTO users (telegram_id, username, level, xp, hp, points,
			shield_active, pepper_mode, pepper_streak, last_perfect_date,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		int64(u.TelegramID), u.Username, int(u.Level), int(u.XP), int(u.HP), int(u.Points),
		u.ShieldActive, u.PepperMode, u.PepperStreak, u.LastPerfectDate,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

// GetByTelegramID loads a user by primary key.
func (r *UserRepository) GetByTelegramID(ctx context.Context, id shared.TelegramID) (*user.User, error) {
	row := r.conn.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, int64(id))
	return scanUser(row)
}

// Update persists the mutated user state.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.conn.pool.Exec(ctx, `
		UPDATE users SET
			username = $2,
			level = $3,
			xp = $4,
			hp = $5,
			points = $6,
			shield_active = $7,
			pepper_mode = $8,
			pepper_streak = $9,
			last_perfect_date = $10,
			updated_at = $11
		WHERE telegram_id = $1`,
		int64(u.TelegramID), u.Username, int(u.Level), int(u.XP), int(u.HP), int(u.Points),
		u.ShieldActive, u.PepperMode, u.PepperStreak, u.LastPerfectDate,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListIDs returns every registered Telegram ID.
func (r *UserRepository) ListIDs(ctx context.Context) ([]shared.TelegramID, error) {
	rows, err := r.conn.pool.Query(ctx, `SELECT telegram_id FROM users ORDER BY telegram_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list user ids: %w", err)
	}
	defer rows.Close()

	var ids []shared.TelegramID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan user id: %w", err)
		}
		ids = append(ids, shared.TelegramID(id))
	}
	return ids, rows.Err()
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count users: %w", err)
	}
	return n, nil
}

// scanUser maps a row to the domain entity.
func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u           user.User
		telegramID  int64
		level       int
		xp          int
		hp          int
		points      int
		lastPerfect *time.Time
	)

	err := row.Scan(
		&telegramID, &u.Username, &level, &xp, &hp, &points,
		&u.ShieldActive, &u.PepperMode, &u.PepperStreak, &lastPerfect,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: scan user: %w", err)
	}

	u.TelegramID = shared.TelegramID(telegramID)
	u.Level = user.Level(level)
	u.XP = user.XP(xp)
	u.HP = user.HP(hp)
	u.Points = user.Points(points)
	if lastPerfect != nil {
		// DATE comes back as midnight UTC; pin it to the bot timezone day.
		d := timeutil.Date(lastPerfect.Year(), int(lastPerfect.Month()), lastPerfect.Day())
		u.LastPerfectDate = &d
	}
	return &u, nil
}
