package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"well formed", "Bearer abc123", "abc123"},
		{"extra whitespace", "Bearer   abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer ", ""},
		{"lowercase scheme", "bearer abc123", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			require.Equal(t, tc.want, ExtractBearerToken(r))
		})
	}
}

func TestCurrentTokenServiceBlacklistsRequestToken(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryTokenBlacklist(30 * time.Minute)
	svc := NewCurrentTokenService(bl)

	r := httptest.NewRequest("POST", "/api/auth/logout", nil)
	r.Header.Set("Authorization", "Bearer the-session-token")

	blacklisted, err := svc.IsBlacklisted(ctx, r)
	require.NoError(t, err)
	require.False(t, blacklisted)

	require.NoError(t, svc.Blacklist(ctx, r))

	blacklisted, err = svc.IsBlacklisted(ctx, r)
	require.NoError(t, err)
	require.True(t, blacklisted)

	// The raw token is what got stored.
	blacklisted, err = bl.IsBlacklisted(ctx, "the-session-token")
	require.NoError(t, err)
	require.True(t, blacklisted)
}

func TestCurrentTokenServiceTokenlessRequestIsNoOp(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryTokenBlacklist(30 * time.Minute)
	svc := NewCurrentTokenService(bl)

	r := httptest.NewRequest("GET", "/health", nil)

	require.NoError(t, svc.Blacklist(ctx, r))

	blacklisted, err := svc.IsBlacklisted(ctx, r)
	require.NoError(t, err)
	require.False(t, blacklisted)
}
