package services

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nickbelling/FlexFlow/internal/repositories"
)

// ---------------------------------------------------------------------
// TokenBlacklist interface
// ---------------------------------------------------------------------

// TokenBlacklist records tokens invalidated before their natural expiry
// (logout, forced revocation). Entries live for the configured bearer
// lifetime: a blacklisted token's own exp claim rejects it after that.
//
// An empty token is passed through unchanged: it is never stored and never
// reported blacklisted, because a request without a token was never
// authenticated to begin with.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	Blacklist(ctx context.Context, token string) error
}

// ---------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------

// memoryTokenBlacklist is the process-local store. Blacklist state is not
// shared across instances, which is acceptable for single-instance or
// sticky-session deployments only; multi-instance deployments should run
// with the Postgres store instead.
type memoryTokenBlacklist struct {
	cache *gocache.Cache
}

func NewMemoryTokenBlacklist(lifetime time.Duration) TokenBlacklist {
	return &memoryTokenBlacklist{
		cache: gocache.New(lifetime, lifetime),
	}
}

func (b *memoryTokenBlacklist) IsBlacklisted(_ context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, found := b.cache.Get(token)
	return found, nil
}

func (b *memoryTokenBlacklist) Blacklist(_ context.Context, token string) error {
	if token == "" {
		return nil
	}
	// The stored value is never read; presence of the key is the signal.
	b.cache.SetDefault(token, struct{}{})
	return nil
}

// ---------------------------------------------------------------------
// Postgres store
// ---------------------------------------------------------------------

type postgresTokenBlacklist struct {
	repo     repositories.BlacklistRepository
	lifetime time.Duration
}

func NewPostgresTokenBlacklist(repo repositories.BlacklistRepository, lifetime time.Duration) TokenBlacklist {
	return &postgresTokenBlacklist{
		repo:     repo,
		lifetime: lifetime,
	}
}

func (b *postgresTokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return b.repo.IsTokenBlacklisted(ctx, token)
}

func (b *postgresTokenBlacklist) Blacklist(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	// Retaining the entry for the full lifetime regardless of the token's
	// remaining validity over-retains slightly, but never under-retains.
	return b.repo.BlacklistToken(ctx, token, time.Now().Add(b.lifetime))
}
