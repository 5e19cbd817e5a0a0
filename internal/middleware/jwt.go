package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nickbelling/FlexFlow/internal/config"
)

type contextKey string

// ContextKeyUsername carries the authenticated subject (the username)
// through the request context once AuthMiddleware has validated the token.
const ContextKeyUsername = contextKey("username")

// ValidateToken checks the token's signature, expiry, and (when configured)
// audience and issuer. Blacklist state is deliberately not checked here;
// that is the blacklist middleware's job, and the two signals are
// independent by design.
//
// Any deviation returns a descriptive error.
func ValidateToken(tokenString string, cfg *config.Config) (*jwt.Token, jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return cfg.BearerSecret, nil
	})
	if err != nil {
		return nil, nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, nil, errors.New("invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, nil, errors.New("missing expiration claim")
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, nil, jwt.ErrTokenExpired
	}

	if cfg.BearerIssuer != "" {
		iss, _ := claims["iss"].(string)
		if iss != cfg.BearerIssuer {
			return nil, nil, errors.New("invalid token issuer")
		}
	}

	if cfg.BearerAudience != "" {
		if !audienceMatches(claims["aud"], cfg.BearerAudience) {
			return nil, nil, errors.New("invalid token audience")
		}
	}

	if sub, _ := claims["sub"].(string); sub == "" {
		return nil, nil, errors.New("missing subject claim")
	}

	return token, claims, nil
}

// aud may be a single string or a list of strings per RFC 7519.
func audienceMatches(aud any, want string) bool {
	switch v := aud.(type) {
	case string:
		return v == want
	case []any:
		for _, a := range v {
			if s, ok := a.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}
