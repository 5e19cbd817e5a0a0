package services

import (
	"context"

	"github.com/nickbelling/FlexFlow/internal/models"
	"github.com/nickbelling/FlexFlow/internal/repositories"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// ---------------------------------------------------------------------
// IdentityProvider interface
// ---------------------------------------------------------------------

// IdentityProvider is the capability the sign-in flow depends on: user
// lookup, credential checks, and role resolution. AuthService never sees
// how passwords are hashed or where users live, so tests (and future
// external identity backends) can swap the implementation wholesale.
type IdentityProvider interface {
	// FindUserByName returns (nil, nil) when no such user exists.
	FindUserByName(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	VerifyTwoFactorCode(user *models.User, code string) bool
	GetRoles(ctx context.Context, userID int) ([]string, error)
}

// ---------------------------------------------------------------------
// Implementation (user repo + bcrypt + TOTP)
// ---------------------------------------------------------------------

type identityProvider struct {
	userRepo repositories.UserRepository
}

func NewIdentityProvider(userRepo repositories.UserRepository) IdentityProvider {
	return &identityProvider{userRepo: userRepo}
}

func (p *identityProvider) FindUserByName(ctx context.Context, username string) (*models.User, error) {
	return p.userRepo.GetByUsername(ctx, username)
}

func (p *identityProvider) VerifyPassword(user *models.User, password string) bool {
	return utils.CheckPasswordHash(password, user.PasswordHash)
}

func (p *identityProvider) VerifyTwoFactorCode(user *models.User, code string) bool {
	if user.TOTPSecret == "" || code == "" {
		return false
	}
	return utils.ValidateTOTPCode(user.TOTPSecret, code)
}

func (p *identityProvider) GetRoles(ctx context.Context, userID int) ([]string, error) {
	return p.userRepo.GetRoles(ctx, userID)
}
