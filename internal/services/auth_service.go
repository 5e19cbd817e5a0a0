package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nickbelling/FlexFlow/internal/config"
	"github.com/nickbelling/FlexFlow/internal/dtos"
	"github.com/nickbelling/FlexFlow/internal/models"
	"github.com/nickbelling/FlexFlow/internal/repositories"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// ---------------------------------------------------------------------
// AuthService interface
// ---------------------------------------------------------------------

// LoginResult is the terminal state of a sign-in attempt.
//
// RequiresTwoFactor set with an empty Token means credentials were valid but
// the client must re-submit with a two-factor code (the controller maps this
// to 428 Precondition Required). Otherwise Token is populated and the user
// is authenticated.
type LoginResult struct {
	User                    *models.User
	Roles                   []string
	Token                   string
	RequiresTwoFactor       bool
	RequiresEmailValidation bool
}

type AuthService interface {
	// Login runs the sign-in sequence: user lookup, lockout check, password
	// verification, optional two-factor verification, token issuance.
	// Lookup misses and wrong passwords both come back as
	// utils.ErrInvalidCredentials so callers cannot probe for usernames.
	Login(ctx context.Context, username, password, twoFactorToken string) (*LoginResult, error)

	// ChangePassword verifies the old password and applies the new one.
	// Policy violations are returned as a list, not collapsed into an error.
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) ([]dtos.ValidationErrorDetail, error)
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type authService struct {
	identity   IdentityProvider
	loginRepo  repositories.LoginAttemptsRepository
	userRepo   repositories.UserRepository
	jwtService JWTService
	cfg        *config.Config
}

func NewAuthService(
	identity IdentityProvider,
	loginRepo repositories.LoginAttemptsRepository,
	userRepo repositories.UserRepository,
	jwtService JWTService,
	cfg *config.Config,
) AuthService {
	return &authService{
		identity:   identity,
		loginRepo:  loginRepo,
		userRepo:   userRepo,
		jwtService: jwtService,
		cfg:        cfg,
	}
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, username, password, twoFactorToken string) (*LoginResult, error) {
	user, err := s.identity.FindUserByName(ctx, username)
	if err != nil {
		utils.Logger.WithError(err).Errorf("User lookup failed during login for %q", username)
		return nil, utils.ErrInvalidCredentials
	}
	if user == nil {
		utils.Logger.Infof("Login attempt for unknown username %q", username)
		return nil, utils.ErrInvalidCredentials
	}

	if _, err := s.loginRepo.GetOrCreate(ctx, user.ID); err != nil {
		utils.Logger.WithError(err).Error("Failed to get or create login attempt record")
		return nil, fmt.Errorf("internal server error")
	}

	locked, lockedUntil, err := s.loginRepo.IsLocked(ctx, user.ID)
	if err == nil && locked {
		utils.Logger.Infof("Login attempt for locked account %q (until %s)", username, lockedUntil.Format(time.RFC3339))
		return nil, fmt.Errorf("%w: account locked until %s", utils.ErrAccountLocked, lockedUntil.Format(time.RFC3339))
	}

	if !s.identity.VerifyPassword(user, password) {
		utils.Logger.Infof("User %q login failed (wrong password)", username)
		s.recordFailedAttempt(ctx, user.ID)
		return nil, utils.ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if twoFactorToken == "" {
			// Valid credentials, but the client must come back with a code.
			utils.Logger.Infof("User %q requires a two-factor code", username)
			return &LoginResult{User: user, RequiresTwoFactor: true}, nil
		}

		if !s.identity.VerifyTwoFactorCode(user, twoFactorToken) {
			utils.Logger.Infof("User %q login failed (invalid two-factor code)", username)
			s.recordFailedAttempt(ctx, user.ID)
			return nil, utils.ErrInvalidCredentials
		}

		// Two-factor cannot be enabled on an unconfirmed email, so the
		// advisory flag is always false on this path.
		return s.authenticated(ctx, user, false)
	}

	return s.authenticated(ctx, user, !user.EmailConfirmed)
}

// authenticated is the terminal action of a successful sign-in: reset the
// failure counter, fetch roles, and mint the token.
func (s *authService) authenticated(ctx context.Context, user *models.User, requiresEmailValidation bool) (*LoginResult, error) {
	_ = s.loginRepo.Reset(ctx, user.ID)

	roles, err := s.identity.GetRoles(ctx, user.ID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to fetch roles for user %q", user.Username)
		return nil, fmt.Errorf("internal server error")
	}

	token, err := s.jwtService.GenerateToken(user.Username, user.Email, roles)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to generate token for user %q", user.Username)
		return nil, fmt.Errorf("token generation failed")
	}

	utils.Logger.Infof("User %q login succeeded (email confirmed: %t, two-factor: %t)",
		user.Username, user.EmailConfirmed, user.TwoFactorEnabled)

	return &LoginResult{
		User:                    user,
		Roles:                   roles,
		Token:                   token,
		RequiresEmailValidation: requiresEmailValidation,
	}, nil
}

func (s *authService) recordFailedAttempt(ctx context.Context, userID int) {
	if err := s.loginRepo.Increment(ctx, userID, s.cfg.LockDuration, s.cfg.AttemptWindow, s.cfg.MaxLoginAttempts); err != nil {
		utils.Logger.WithError(err).Error("Failed to increment login attempts")
	}
}

// ---------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------

func (s *authService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) ([]dtos.ValidationErrorDetail, error) {
	user, err := s.identity.FindUserByName(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrInvalidCredentials
	}

	var failures []dtos.ValidationErrorDetail

	if !s.identity.VerifyPassword(user, oldPassword) {
		failures = append(failures, dtos.ValidationErrorDetail{
			Code:    "password_mismatch",
			Message: "Incorrect password.",
		})
	}
	if newPassword == "" {
		failures = append(failures, dtos.ValidationErrorDetail{
			Code:    "password_required",
			Message: "The new password must not be empty.",
		})
	}
	if newPassword != "" && newPassword == oldPassword {
		failures = append(failures, dtos.ValidationErrorDetail{
			Code:    "password_unchanged",
			Message: "The new password must differ from the old password.",
		})
	}
	if len(failures) > 0 {
		utils.Logger.Infof("Password change for %q refused (%d validation failures)", username, len(failures))
		return failures, nil
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return nil, err
	}

	utils.Logger.Infof("User %q changed their password", username)
	return nil, nil
}
