package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/questlog/questlog-bot/internal/domain/idea"
	"github.com/questlog/questlog-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDEA REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// IdeaRepository is the PostgreSQL implementation of idea.Repository.
type IdeaRepository struct {
	conn *Connection
}

// NewIdeaRepository creates the repository.
func NewIdeaRepository(conn *Connection) *IdeaRepository {
	return &IdeaRepository{conn: conn}
}

// ──────────────────────────────────────────────────────────────────────────────
// Categories
// ──────────────────────────────────────────────────────────────────────────────

// CreateCategory inserts a new idea category.
func (r *IdeaRepository) CreateCategory(ctx context.Context, c *idea.Category) error {
	_, err := r.conn.pool.Exec(ctx, `
		INSERT INTO idea_categories (id, owner_id, name, emoji, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, int64(c.OwnerID), c.Name, c.Emoji, c.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("postgres: create idea category: %w", err)
	}
	return nil
}

// GetCategory loads an owner's category by id.
func (r *IdeaRepository) GetCategory(ctx context.Context, owner shared.TelegramID, id string) (*idea.Category, error) {
	row := r.conn.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, emoji, created_at
		FROM idea_categories WHERE owner_id = $1 AND id = $2`,
		int64(owner), id)
	return scanIdeaCategory(row)
}

// ListCategories returns an owner's categories, oldest first.
func (r *IdeaRepository) ListCategories(ctx context.Context, owner shared.TelegramID) ([]*idea.Category, error) {
	rows, err := r.conn.pool.Query(ctx, `
		SELECT id, owner_id, name, emoji, created_at
		FROM idea_categories WHERE owner_id = $1
		ORDER BY created_at`,
		int64(owner))
	if err != nil {
		return nil, fmt.Errorf("postgres: list idea categories: %w", err)
	}
	defer rows.Close()

	var categories []*idea.Category
	for rows.Next() {
		c, err := scanIdeaCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category; its ideas go with it via ON DELETE CASCADE.
func (r *IdeaRepository) DeleteCategory(ctx context.Context, owner shared.TelegramID, id string) error {
	tag, err := r.conn.pool.Exec(ctx,
		`DELETE FROM idea_categories WHERE owner_id = $1 AND id = $2`, int64(owner), id)
	if err != nil {
		return fmt.Errorf("postgres: delete idea category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return idea.ErrCategoryNotFound
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ideas
// ──────────────────────────────────────────────────────────────────────────────

// CreateIdea inserts a new idea.
func (r *IdeaRepository) CreateIdea(ctx context.Context, i *idea.Idea) error {
	_, err := r.conn.pool.Exec(ctx, `
		INSERT INTO ideas (id, owner_id, category_id, title, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		i.ID, int64(i.OwnerID), i.CategoryID, i.Title, string(i.Status), i.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return idea.ErrCategoryNotFound
		}
		return fmt.Errorf("postgres: create idea: %w", err)
	}
	return nil
}

// GetIdea loads an owner's idea by id.
func (r *IdeaRepository) GetIdea(ctx context.Context, owner shared.TelegramID, id string) (*idea.Idea, error) {
	row := r.conn.pool.QueryRow(ctx, `
		SELECT id, owner_id, category_id, title, status, created_at
		FROM ideas WHERE owner_id = $1 AND id = $2`,
		int64(owner), id)
	return scanIdea(row)
}

// UpdateIdea persists the mutated idea state.
func (r *IdeaRepository) UpdateIdea(ctx context.Context, i *idea.Idea) error {
	tag, err := r.conn.pool.Exec(ctx, `
		UPDATE ideas SET category_id = $2, title = $3, status = $4
		WHERE id = $1`,
		i.ID, i.CategoryID, i.Title, string(i.Status),
	)
	if err != nil {
		return fmt.Errorf("postgres: update idea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return idea.ErrIdeaNotFound
	}
	return nil
}

// DeleteIdea removes an owner's idea.
func (r *IdeaRepository) DeleteIdea(ctx context.Context, owner shared.TelegramID, id string) error {
	tag, err := r.conn.pool.Exec(ctx,
		`DELETE FROM ideas WHERE owner_id = $1 AND id = $2`, int64(owner), id)
	if err != nil {
		return fmt.Errorf("postgres: delete idea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return idea.ErrIdeaNotFound
	}
	return nil
}

// ListIdeas returns the ideas of a category, oldest first.
func (r *IdeaRepository) ListIdeas(ctx context.Context, owner shared.TelegramID, categoryID string) ([]*idea.Idea, error) {
	rows, err := r.conn.pool.Query(ctx, `
		SELECT id, owner_id, category_id, title, status, created_at
		FROM ideas WHERE owner_id = $1 AND category_id = $2
		ORDER BY created_at`,
		int64(owner), categoryID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []*idea.Idea
	for rows.Next() {
		i, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, i)
	}
	return ideas, rows.Err()
}

// ──────────────────────────────────────────────────────────────────────────────
// Scanners
// ──────────────────────────────────────────────────────────────────────────────

func scanIdeaCategory(row pgx.Row) (*idea.Category, error) {
	var (
		c       idea.Category
		ownerID int64
	)
	err := row.Scan(&c.ID, &ownerID, &c.Name, &c.Emoji, &c.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, idea.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("postgres: scan idea category: %w", err)
	}
	c.OwnerID = shared.TelegramID(ownerID)
	return &c, nil
}

func scanIdea(row pgx.Row) (*idea.Idea, error) {
	var (
		i       idea.Idea
		ownerID int64
		status  string
	)
	err := row.Scan(&i.ID, &ownerID, &i.CategoryID, &i.Title, &status, &i.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, idea.ErrIdeaNotFound
		}
		return nil, fmt.Errorf("postgres: scan idea: %w", err)
	}
	i.OwnerID = shared.TelegramID(ownerID)
	i.Status = idea.Status(status)
	return &i, nil
}
