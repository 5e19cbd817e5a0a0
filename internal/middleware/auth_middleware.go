package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nickbelling/FlexFlow/internal/config"
	"github.com/nickbelling/FlexFlow/internal/services"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// AuthMiddleware protects endpoints that require an authenticated caller.
// The JWT is read from "Authorization: Bearer ..."; a missing or invalid
// token returns 401 before the handler runs. On success the token's subject
// is stored in the request context under ContextKeyUsername.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := services.ExtractBearerToken(r)
			if tokenStr == "" {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing Authorization header", nil,
				)
				return
			}

			_, claims, vErr := ValidateToken(tokenStr, cfg)
			if vErr != nil {
				if errors.Is(vErr, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, vErr,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, vErr,
				)
				return
			}

			sub, _ := claims["sub"].(string)
			ctx := context.WithValue(r.Context(), ContextKeyUsername, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
