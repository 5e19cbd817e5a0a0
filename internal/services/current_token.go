package services

import (
	"context"
	"net/http"
	"strings"
)

// ---------------------------------------------------------------------
// CurrentTokenService interface
// ---------------------------------------------------------------------

// CurrentTokenService resolves blacklist operations against the token
// carried by the request at hand, so callers (logout handler, blacklist
// middleware) never touch header parsing themselves.
type CurrentTokenService interface {
	IsBlacklisted(ctx context.Context, r *http.Request) (bool, error)
	Blacklist(ctx context.Context, r *http.Request) error
}

type currentTokenService struct {
	blacklist TokenBlacklist
}

func NewCurrentTokenService(blacklist TokenBlacklist) CurrentTokenService {
	return &currentTokenService{blacklist: blacklist}
}

func (s *currentTokenService) IsBlacklisted(ctx context.Context, r *http.Request) (bool, error) {
	return s.blacklist.IsBlacklisted(ctx, ExtractBearerToken(r))
}

func (s *currentTokenService) Blacklist(ctx context.Context, r *http.Request) error {
	return s.blacklist.Blacklist(ctx, ExtractBearerToken(r))
}

// ExtractBearerToken pulls the token out of the Authorization header.
// The header is "Bearer <token>"; the token is the last whitespace-delimited
// segment. A missing or malformed header yields the empty string, which the
// blacklist treats as "not blacklisted" by contract.
func ExtractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	fields := strings.Fields(h)
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}
