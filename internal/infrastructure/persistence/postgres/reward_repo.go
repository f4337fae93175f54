package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/questlog/questlog-bot/internal/domain/reward"
	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REWARD REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// RewardRepository is the PostgreSQL implementation of reward.Repository.
type RewardRepository struct {
	conn *Connection
}

// NewRewardRepository creates the repository.
func NewRewardRepository(conn *Connection) *RewardRepository {
	return &RewardRepository{conn: conn}
}

const rewardColumns = `id, owner_id, title, cost, claimed, claimed_at, created_at`

// Create inserts a new reward.
func (r *RewardRepository) Create(ctx context.Context, rw *reward.Reward) error {
	_, err := r.conn.pool.Exec(ctx, `
		INSERT INTO rewards (id, owner_id, title, cost, claimed, claimed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rw.ID, int64(rw.OwnerID), rw.Title, rw.Cost, rw.Claimed, rw.ClaimedAt, rw.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("postgres: create reward: %w", err)
	}
	return nil
}

// GetByID loads a reward by its identifier.
func (r *RewardRepository) GetByID(ctx context.Context, id string) (*reward.Reward, error) {
	row := r.conn.pool.QueryRow(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id)
	return scanReward(row)
}

// Update persists the mutated reward state.
func (r *RewardRepository) Update(ctx context.Context, rw *reward.Reward) error {
	tag, err := r.conn.pool.Exec(ctx, `
		UPDATE rewards SET title = $2, cost = $3, claimed = $4, claimed_at = $5
		WHERE id = $1`,
		rw.ID, rw.Title, rw.Cost, rw.Claimed, rw.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return reward.ErrRewardNotFound
	}
	return nil
}

// Delete removes an owner's reward.
func (r *RewardRepository) Delete(ctx context.Context, owner shared.TelegramID, id string) error {
	tag, err := r.conn.pool.Exec(ctx,
		`DELETE FROM rewards WHERE owner_id = $1 AND id = $2`, int64(owner), id)
	if err != nil {
		return fmt.Errorf("postgres: delete reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return reward.ErrRewardNotFound
	}
	return nil
}

// ListUnclaimed returns an owner's unclaimed rewards, oldest first.
func (r *RewardRepository) ListUnclaimed(ctx context.Context, owner shared.TelegramID) ([]*reward.Reward, error) {
	rows, err := r.conn.pool.Query(ctx, `
		SELECT `+rewardColumns+` FROM rewards
		WHERE owner_id = $1 AND NOT claimed
		ORDER BY created_at`,
		int64(owner))
	if err != nil {
		return nil, fmt.Errorf("postgres: list unclaimed rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*reward.Reward
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, rw)
	}
	return rewards, rows.Err()
}

// scanReward maps a row to the domain entity.
func scanReward(row pgx.Row) (*reward.Reward, error) {
	var (
		rw      reward.Reward
		ownerID int64
	)

	err := row.Scan(
		&rw.ID, &ownerID, &rw.Title, &rw.Cost, &rw.Claimed, &rw.ClaimedAt, &rw.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, reward.ErrRewardNotFound
		}
		return nil, fmt.Errorf("postgres: scan reward: %w", err)
	}

	rw.OwnerID = shared.TelegramID(ownerID)
	return &rw, nil
}
