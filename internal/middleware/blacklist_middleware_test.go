package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nickbelling/FlexFlow/internal/services"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

func newBlacklistHandler(t *testing.T, currentToken services.CurrentTokenService) http.Handler {
	t.Helper()
	return BlacklistMiddleware(currentToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestBlacklistMiddlewarePassesTokenlessRequest(t *testing.T) {
	bl := services.NewMemoryTokenBlacklist(30 * time.Minute)
	handler := newBlacklistHandler(t, services.NewCurrentTokenService(bl))

	r := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestBlacklistMiddlewarePassesUnlistedToken(t *testing.T) {
	bl := services.NewMemoryTokenBlacklist(30 * time.Minute)
	handler := newBlacklistHandler(t, services.NewCurrentTokenService(bl))

	r := httptest.NewRequest("GET", "/api/auth/whatever", nil)
	r.Header.Set("Authorization", "Bearer still-good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestBlacklistMiddlewareRejectsBlacklistedToken(t *testing.T) {
	bl := services.NewMemoryTokenBlacklist(30 * time.Minute)
	require.NoError(t, bl.Blacklist(context.Background(), "revoked-token"))
	handler := newBlacklistHandler(t, services.NewCurrentTokenService(bl))

	r := httptest.NewRequest("GET", "/api/auth/whatever", nil)
	r.Header.Set("Authorization", "Bearer revoked-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var errResp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	require.Equal(t, utils.ErrCodeTokenBlacklisted, errResp.Code)
}
