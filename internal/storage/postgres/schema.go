package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order; every statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name     TEXT NOT NULL,
		school_class  TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL,
		status        TEXT NOT NULL,
		language      TEXT NOT NULL,
		coins         INTEGER NOT NULL DEFAULT 0 CHECK (coins >= 0),
		tickets       INTEGER NOT NULL DEFAULT 0 CHECK (tickets >= 0),
		game_scores   JSONB NOT NULL DEFAULT '{}'::jsonb,
		total_score   INTEGER NOT NULL DEFAULT 0,
		companion_id  TEXT,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL UNIQUE REFERENCES accounts (id) ON DELETE CASCADE,
		type             TEXT NOT NULL,
		name             TEXT NOT NULL,
		personality      TEXT NOT NULL,
		level            INTEGER NOT NULL,
		current_xp       INTEGER NOT NULL,
		next_level_xp    INTEGER NOT NULL,
		last_check_in_at TIMESTAMPTZ,
		streak_days      INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS content_entries (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS accounts_total_score_idx ON accounts (total_score DESC, created_at, id)`,
}

// Migrate creates the tables the store needs if they do not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
