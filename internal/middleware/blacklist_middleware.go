package middleware

import (
	"net/http"

	"github.com/nickbelling/FlexFlow/internal/services"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// BlacklistMiddleware intercepts every request and rejects it when the
// bearer token it carries has been blacklisted (i.e. the session was logged
// out before the token expired). Requests with no token pass straight
// through: they were never authenticated, so the blacklist has nothing to
// say about them, and AuthMiddleware will reject them where it matters.
func BlacklistMiddleware(currentToken services.CurrentTokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blacklisted, err := currentToken.IsBlacklisted(r.Context(), r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Blacklist check failed", nil, err,
				)
				return
			}
			if blacklisted {
				utils.Logger.Debug("Provided token is blacklisted; rejecting request")
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeTokenBlacklisted, "Token has been invalidated", nil,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
