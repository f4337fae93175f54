package postgres

import (
	"context"
	"fmt"

	"github.com/questlog/questlog-bot/internal/domain/access"
	"github.com/questlog/questlog-bot/internal/domain/shared"
	"github.com/questlog/questlog-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// WHITELIST REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// WhitelistRepository is the PostgreSQL implementation of access.Repository.
type WhitelistRepository struct {
	conn *Connection
}

// NewWhitelistRepository creates the repository.
func NewWhitelistRepository(conn *Connection) *WhitelistRepository {
	return &WhitelistRepository{conn: conn}
}

// Add puts a Telegram ID on the whitelist.
func (r *WhitelistRepository) Add(ctx context.Context, id shared.TelegramID) error {
	_, err := r.conn.pool.Exec(ctx, `
		INSERT INTO whitelist (telegram_id, added_at) VALUES ($1, $2)`,
		int64(id), timeutil.Now())
	if err != nil {
		if IsUniqueViolation(err) {
			return access.ErrAlreadyAllowed
		}
		return fmt.Errorf("postgres: whitelist add: %w", err)
	}
	return nil
}

// Remove takes a Telegram ID off the whitelist.
func (r *WhitelistRepository) Remove(ctx context.Context, id shared.TelegramID) error {
	tag, err := r.conn.pool.Exec(ctx,
		`DELETE FROM whitelist WHERE telegram_id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("postgres: whitelist remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return access.ErrNotAllowed
	}
	return nil
}

// IsAllowed reports whether the Telegram ID is whitelisted.
func (r *WhitelistRepository) IsAllowed(ctx context.Context, id shared.TelegramID) (bool, error) {
	var allowed bool
	err := r.conn.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM whitelist WHERE telegram_id = $1)`, int64(id)).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("postgres: whitelist check: %w", err)
	}
	return allowed, nil
}

// List returns every whitelisted Telegram ID.
func (r *WhitelistRepository) List(ctx context.Context) ([]shared.TelegramID, error) {
	rows, err := r.conn.pool.Query(ctx,
		`SELECT telegram_id FROM whitelist ORDER BY added_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres: whitelist list: %w", err)
	}
	defer rows.Close()

	var ids []shared.TelegramID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan whitelist id: %w", err)
		}
		ids = append(ids, shared.TelegramID(id))
	}
	return ids, rows.Err()
}
