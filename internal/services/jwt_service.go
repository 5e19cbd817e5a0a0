package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nickbelling/FlexFlow/internal/config"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

// JWTService mints the signed bearer tokens handed out at login. Token
// contents are deterministic for a given user; only iat/exp/jti vary
// between calls.
type JWTService interface {
	GenerateToken(username, email string, roles []string) (string, error)
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type jwtService struct {
	signingKey []byte
	lifetime   time.Duration
	audience   string
	issuer     string
}

func NewJWTService(cfg *config.Config) JWTService {
	return &jwtService{
		signingKey: cfg.BearerSecret,
		lifetime:   cfg.BearerLifetime,
		audience:   cfg.BearerAudience,
		issuer:     cfg.BearerIssuer,
	}
}

// GenerateToken builds and HMAC-signs a token carrying the user's identity
// claims. Roles ride along as a claim so endpoints can gate on them without
// a user-store round trip.
func (j *jwtService) GenerateToken(username, email string, roles []string) (string, error) {
	if len(j.signingKey) == 0 {
		// LoadConfig already refuses to start without a secret; this guards
		// hand-constructed services in tests.
		return "", utils.ErrMissingSigningKey
	}
	if username == "" || email == "" {
		return "", errors.New("username and email are required claims")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   username,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(j.lifetime).Unix(),
		"jti":   uuid.NewString(),
	}
	if len(roles) > 0 {
		claims["roles"] = roles
	}
	if j.audience != "" {
		claims["aud"] = j.audience
	}
	if j.issuer != "" {
		claims["iss"] = j.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}
