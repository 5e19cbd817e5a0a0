package models

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistedToken represents a revoked or invalidated access token.
type BlacklistedToken struct {
	ID        uuid.UUID `json:"id"`
	TokenHash string    `json:"token_hash"` // SHA-256 of the raw bearer token
	ExpiresAt time.Time `json:"expires_at"` // blacklist entry expiry
	CreatedAt time.Time `json:"created_at"` // time when token was blacklisted
}
