package config

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// InitDB opens the database with the configured driver: "postgres" (lib/pq)
// or "pgx" (pgx stdlib).
func InitDB(cfg *Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	driver := cfg.DatabaseDriver
	if driver != "postgres" && driver != "pgx" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}

	db, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS verification_tokens (
			identifier VARCHAR(255) PRIMARY KEY,
			secret VARCHAR(255) NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0
		)`,

		`ALTER TABLE verification_tokens ADD COLUMN IF NOT EXISTS attempts INTEGER NOT NULL DEFAULT 0`,

		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			starts_at TIMESTAMPTZ NOT NULL,
			ends_at TIMESTAMPTZ,
			location_text VARCHAR(255),
			visibility VARCHAR(16) NOT NULL DEFAULT 'unlisted'
				CHECK (visibility IN ('unlisted', 'private', 'public')),
			status VARCHAR(16) NOT NULL DEFAULT 'open'
				CHECK (status IN ('open', 'closed')),
			share_token VARCHAR(64) UNIQUE NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			body TEXT NOT NULL CHECK (char_length(body) BETWEEN 1 AND 800),
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS event_invites (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL,
			invite_token VARCHAR(64) UNIQUE NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'accepted', 'declined', 'maybe')),
			responded_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(event_id, email)
		)`,

		`CREATE TABLE IF NOT EXISTS rsvps (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			email VARCHAR(255),
			response VARCHAR(16) NOT NULL CHECK (response IN ('yes', 'no', 'maybe')),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(event_id, email)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_owner_id ON events(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_event_id ON comments(event_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_event_invites_event_id ON event_invites(event_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
