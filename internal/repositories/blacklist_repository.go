package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nickbelling/FlexFlow/internal/utils"
)

// BlacklistRepository is the Postgres-backed blacklist store. Tokens are
// stored hashed; a row whose expires_at has passed is treated as absent and
// purged by the nightly cleanup job.
type BlacklistRepository interface {
	BlacklistToken(ctx context.Context, rawToken string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, rawToken string) (bool, error)
	CleanupExpired(ctx context.Context) error
}

type blacklistRepository struct {
	db DB
}

func NewBlacklistRepository(db DB) BlacklistRepository {
	return &blacklistRepository{db: db}
}

func (r *blacklistRepository) BlacklistToken(ctx context.Context, rawToken string, expiresAt time.Time) error {
	// ON CONFLICT makes re-blacklisting the same token a no-op.
	query := `
        INSERT INTO blacklisted_tokens (id, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (token_hash) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, uuid.New(), utils.HashToken(rawToken), expiresAt)
	return err
}

func (r *blacklistRepository) IsTokenBlacklisted(ctx context.Context, rawToken string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM blacklisted_tokens
            WHERE token_hash = $1 AND expires_at > NOW()
        )
    `
	var exists bool
	err := r.db.QueryRow(ctx, query, utils.HashToken(rawToken)).Scan(&exists)
	return exists, err
}

func (r *blacklistRepository) CleanupExpired(ctx context.Context) error {
	query := `DELETE FROM blacklisted_tokens WHERE expires_at < NOW()`
	_, err := r.db.Exec(ctx, query)
	return err
}
