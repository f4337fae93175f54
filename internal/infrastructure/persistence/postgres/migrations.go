package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: USERS & WHITELIST
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users and whitelist tables
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    telegram_id BIGINT PRIMARY KEY,
    username VARCHAR(100) NOT NULL,
    level INTEGER NOT NULL DEFAULT 1,
    xp INTEGER NOT NULL DEFAULT 0,
    hp INTEGER NOT NULL DEFAULT 100,
    points INTEGER NOT NULL DEFAULT 0,
    shield_active BOOLEAN NOT NULL DEFAULT FALSE,
    pepper_mode BOOLEAN NOT NULL DEFAULT FALSE,
    pepper_streak INTEGER NOT NULL DEFAULT 0,
    last_perfect_date DATE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_level CHECK (level >= 1),
    CONSTRAINT valid_xp CHECK (xp >= 0 AND xp < level * 100),
    CONSTRAINT valid_hp CHECK (hp >= 0 AND hp <= 100),
    CONSTRAINT valid_points CHECK (points >= 0),
    CONSTRAINT valid_streak CHECK (pepper_streak >= 0)
);

CREATE TABLE IF NOT EXISTS whitelist (
    telegram_id BIGINT PRIMARY KEY,
    added_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration001Down = `
DROP TABLE IF EXISTS whitelist;
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: TASKS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create tasks table
-- Version: 002

CREATE TABLE IF NOT EXISTS tasks (
    id UUID PRIMARY KEY,
    owner_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    category VARCHAR(20) NOT NULL,
    reminder_time VARCHAR(5) NOT NULL DEFAULT '',
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE,
    created_date DATE NOT NULL,
    penalized BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_category CHECK (category IN ('focus', 'important', 'wish'))
);

-- Day listing and settlement both hit (owner, day).
CREATE INDEX IF NOT EXISTS idx_tasks_owner_date ON tasks(owner_id, created_date);
CREATE INDEX IF NOT EXISTS idx_tasks_owner_date_pending
    ON tasks(owner_id, created_date) WHERE NOT completed;
`

const migration002Down = `
DROP TABLE IF EXISTS tasks;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: REWARDS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create rewards table
-- Version: 003

CREATE TABLE IF NOT EXISTS rewards (
    id UUID PRIMARY KEY,
    owner_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    cost INTEGER NOT NULL,
    claimed BOOLEAN NOT NULL DEFAULT FALSE,
    claimed_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_cost CHECK (cost > 0)
);

CREATE INDEX IF NOT EXISTS idx_rewards_owner_unclaimed
    ON rewards(owner_id) WHERE NOT claimed;
`

const migration003Down = `
DROP TABLE IF EXISTS rewards;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: IDEA BOX
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create idea categories and ideas
-- Version: 004

CREATE TABLE IF NOT EXISTS idea_categories (
    id UUID PRIMARY KEY,
    owner_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
    name VARCHAR(100) NOT NULL,
    emoji VARCHAR(16) NOT NULL DEFAULT '💡',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_idea_categories_owner ON idea_categories(owner_id);

CREATE TABLE IF NOT EXISTS ideas (
    id UUID PRIMARY KEY,
    owner_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
    category_id UUID NOT NULL REFERENCES idea_categories(id) ON DELETE CASCADE,
    title VARCHAR(300) NOT NULL,
    status VARCHAR(10) NOT NULL DEFAULT 'new',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('new', 'wip', 'done'))
);

CREATE INDEX IF NOT EXISTS idx_ideas_category ON ideas(category_id);
`

const migration004Down = `
DROP TABLE IF EXISTS ideas;
DROP TABLE IF EXISTS idea_categories;
`

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_users_and_whitelist", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_tasks", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_rewards", UpSQL: migration003Up, DownSQL: migration003Down},
		{Version: 4, Name: "create_idea_box", UpSQL: migration004Up, DownSQL: migration004Down},
	}
}
