package app

import (
	"context"

	"github.com/nickbelling/FlexFlow/internal/utils"
)

// Schema statements are idempotent so they can run on every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            SERIAL PRIMARY KEY,
        username      TEXT NOT NULL UNIQUE,
        email         TEXT NOT NULL,
        display_name  TEXT NOT NULL DEFAULT '',
        password_hash TEXT NOT NULL,
        email_confirmed    BOOLEAN NOT NULL DEFAULT FALSE,
        totp_secret        TEXT NOT NULL DEFAULT '',
        two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
        created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE TABLE IF NOT EXISTS roles (
        id   SERIAL PRIMARY KEY,
        name TEXT NOT NULL UNIQUE
    )`,

	`CREATE TABLE IF NOT EXISTS user_roles (
        user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        role_id INT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
        PRIMARY KEY (user_id, role_id)
    )`,

	`CREATE TABLE IF NOT EXISTS login_attempts (
        user_id       INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        attempt_count INT NOT NULL DEFAULT 0,
        locked_until  TIMESTAMPTZ,
        updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE TABLE IF NOT EXISTS blacklisted_tokens (
        id         UUID PRIMARY KEY,
        token_hash TEXT NOT NULL UNIQUE,
        expires_at TIMESTAMPTZ NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE INDEX IF NOT EXISTS idx_blacklisted_tokens_expires_at
        ON blacklisted_tokens (expires_at)`,
}

// Migrate applies the schema.
func (a *App) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := a.DB.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	utils.Logger.Info("Database schema up to date.")
	return nil
}
