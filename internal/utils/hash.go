package utils

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken digests a raw bearer token before it touches the database, so a
// dump of the blacklist table never yields replayable tokens. Exact-match
// lookups still work because the digest is deterministic.
func HashToken(raw string) string {
	hasher := sha256.New()
	hasher.Write([]byte(raw))
	return base64.URLEncoding.EncodeToString(hasher.Sum(nil))
}
