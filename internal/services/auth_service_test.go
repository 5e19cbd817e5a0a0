package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nickbelling/FlexFlow/internal/config"
	"github.com/nickbelling/FlexFlow/internal/models"
	"github.com/nickbelling/FlexFlow/internal/repositories"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// ---------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------

type fakeIdentity struct {
	user        *models.User
	findErr     error
	password    string
	twoFactorOK string
	roles       []string
	rolesErr    error
}

func (f *fakeIdentity) FindUserByName(_ context.Context, username string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.user != nil && f.user.Username == username {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeIdentity) VerifyPassword(_ *models.User, password string) bool {
	return password == f.password
}

func (f *fakeIdentity) VerifyTwoFactorCode(_ *models.User, code string) bool {
	return f.twoFactorOK != "" && code == f.twoFactorOK
}

func (f *fakeIdentity) GetRoles(_ context.Context, _ int) ([]string, error) {
	return f.roles, f.rolesErr
}

type fakeLoginAttempts struct {
	locked      bool
	lockedUntil time.Time
	increments  int
	resets      int
}

func (f *fakeLoginAttempts) GetOrCreate(_ context.Context, userID int) (*repositories.LoginAttempts, error) {
	return &repositories.LoginAttempts{UserID: userID}, nil
}

func (f *fakeLoginAttempts) Increment(_ context.Context, _ int, _, _ time.Duration, _ int) error {
	f.increments++
	return nil
}

func (f *fakeLoginAttempts) Reset(_ context.Context, _ int) error {
	f.resets++
	return nil
}

func (f *fakeLoginAttempts) IsLocked(_ context.Context, _ int) (bool, time.Time, error) {
	return f.locked, f.lockedUntil, nil
}

func (f *fakeLoginAttempts) CleanupStale(_ context.Context, _ time.Duration) error {
	return nil
}

type fakeUserRepo struct {
	updatedHash string
}

func (f *fakeUserRepo) Create(_ context.Context, _ *models.User) error { return nil }
func (f *fakeUserRepo) GetByUsername(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByID(_ context.Context, _ int) (*models.User, error) { return nil, nil }
func (f *fakeUserRepo) GetRoles(_ context.Context, _ int) ([]string, error)    { return nil, nil }
func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, _ int, hash string) error {
	f.updatedHash = hash
	return nil
}
func (f *fakeUserRepo) EnsureRole(_ context.Context, _ string) (int, error) { return 1, nil }
func (f *fakeUserRepo) AssignRole(_ context.Context, _ int, _ string) error { return nil }

type fakeJWT struct {
	token string
	err   error
}

func (f *fakeJWT) GenerateToken(_, _ string, _ []string) (string, error) {
	return f.token, f.err
}

func testUser(twoFactor bool, emailConfirmed bool) *models.User {
	return &models.User{
		ID:               7,
		Username:         "alice",
		Email:            "alice@example.com",
		DisplayName:      "Alice",
		EmailConfirmed:   emailConfirmed,
		TwoFactorEnabled: twoFactor,
	}
}

func newTestAuthService(identity *fakeIdentity, attempts *fakeLoginAttempts) AuthService {
	cfg := &config.Config{
		MaxLoginAttempts: config.MaxLoginAttempts,
		AttemptWindow:    config.AttemptWindow,
		LockDuration:     config.LockDuration,
	}
	return NewAuthService(identity, attempts, &fakeUserRepo{}, &fakeJWT{token: "signed-token"}, cfg)
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

func TestLoginSuccess(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, true),
		password: "correct horse",
		roles:    []string{"Admin"},
	}
	attempts := &fakeLoginAttempts{}
	svc := newTestAuthService(identity, attempts)

	result, err := svc.Login(context.Background(), "alice", "correct horse", "")
	require.NoError(t, err)
	require.Equal(t, "signed-token", result.Token)
	require.Equal(t, []string{"Admin"}, result.Roles)
	require.False(t, result.RequiresTwoFactor)
	require.False(t, result.RequiresEmailValidation)
	require.Equal(t, 1, attempts.resets)
}

func TestLoginFlagsUnconfirmedEmail(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, false),
		password: "correct horse",
	}
	svc := newTestAuthService(identity, &fakeLoginAttempts{})

	result, err := svc.Login(context.Background(), "alice", "correct horse", "")
	require.NoError(t, err)
	// Advisory only: the login still succeeds and a token is issued.
	require.True(t, result.RequiresEmailValidation)
	require.NotEmpty(t, result.Token)
}

func TestLoginUnknownUserAndWrongPasswordAreIndistinguishable(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, true),
		password: "correct horse",
	}
	svc := newTestAuthService(identity, &fakeLoginAttempts{})

	_, unknownErr := svc.Login(context.Background(), "mallory", "anything", "")
	_, wrongPwErr := svc.Login(context.Background(), "alice", "wrong", "")

	require.ErrorIs(t, unknownErr, utils.ErrInvalidCredentials)
	require.ErrorIs(t, wrongPwErr, utils.ErrInvalidCredentials)
	require.Equal(t, unknownErr.Error(), wrongPwErr.Error())
}

func TestLoginWrongPasswordIncrementsAttempts(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, true),
		password: "correct horse",
	}
	attempts := &fakeLoginAttempts{}
	svc := newTestAuthService(identity, attempts)

	_, err := svc.Login(context.Background(), "alice", "wrong", "")
	require.ErrorIs(t, err, utils.ErrInvalidCredentials)
	require.Equal(t, 1, attempts.increments)
	require.Zero(t, attempts.resets)
}

func TestLoginLockedAccount(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, true),
		password: "correct horse",
	}
	attempts := &fakeLoginAttempts{
		locked:      true,
		lockedUntil: time.Now().Add(10 * time.Minute),
	}
	svc := newTestAuthService(identity, attempts)

	// Even the correct password is refused while locked.
	_, err := svc.Login(context.Background(), "alice", "correct horse", "")
	require.ErrorIs(t, err, utils.ErrAccountLocked)
}

func TestLoginRequiresTwoFactorCode(t *testing.T) {
	identity := &fakeIdentity{
		user:        testUser(true, true),
		password:    "correct horse",
		twoFactorOK: "123456",
	}
	attempts := &fakeLoginAttempts{}
	svc := newTestAuthService(identity, attempts)

	result, err := svc.Login(context.Background(), "alice", "correct horse", "")
	require.NoError(t, err)
	require.True(t, result.RequiresTwoFactor)
	require.Empty(t, result.Token)
	require.Zero(t, attempts.increments)
}

func TestLoginWithValidTwoFactorCode(t *testing.T) {
	identity := &fakeIdentity{
		user:        testUser(true, true),
		password:    "correct horse",
		twoFactorOK: "123456",
	}
	svc := newTestAuthService(identity, &fakeLoginAttempts{})

	result, err := svc.Login(context.Background(), "alice", "correct horse", "123456")
	require.NoError(t, err)
	require.False(t, result.RequiresTwoFactor)
	require.NotEmpty(t, result.Token)
	// Two-factor accounts always have confirmed emails.
	require.False(t, result.RequiresEmailValidation)
}

func TestLoginWithInvalidTwoFactorCode(t *testing.T) {
	identity := &fakeIdentity{
		user:        testUser(true, true),
		password:    "correct horse",
		twoFactorOK: "123456",
	}
	attempts := &fakeLoginAttempts{}
	svc := newTestAuthService(identity, attempts)

	_, err := svc.Login(context.Background(), "alice", "correct horse", "000000")
	require.ErrorIs(t, err, utils.ErrInvalidCredentials)
	require.Equal(t, 1, attempts.increments)
}

func TestLoginLookupFailureCollapsesToInvalidCredentials(t *testing.T) {
	identity := &fakeIdentity{findErr: errors.New("connection refused")}
	svc := newTestAuthService(identity, &fakeLoginAttempts{})

	_, err := svc.Login(context.Background(), "alice", "whatever", "")
	require.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

// ---------------------------------------------------------------------
// ChangePassword
// ---------------------------------------------------------------------

func TestChangePasswordSuccess(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, true),
		password: "old-password",
	}
	userRepo := &fakeUserRepo{}
	cfg := &config.Config{}
	svc := NewAuthService(identity, &fakeLoginAttempts{}, userRepo, &fakeJWT{token: "t"}, cfg)

	failures, err := svc.ChangePassword(context.Background(), "alice", "old-password", "new-password")
	require.NoError(t, err)
	require.Empty(t, failures)

	// The stored hash verifies against the new password.
	require.True(t, utils.CheckPasswordHash("new-password", userRepo.updatedHash))
}

func TestChangePasswordCollectsAllFailures(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, true),
		password: "old-password",
	}
	userRepo := &fakeUserRepo{}
	svc := NewAuthService(identity, &fakeLoginAttempts{}, userRepo, &fakeJWT{token: "t"}, &config.Config{})

	failures, err := svc.ChangePassword(context.Background(), "alice", "not-the-old-password", "")
	require.NoError(t, err)
	require.Len(t, failures, 2)

	codes := []string{failures[0].Code, failures[1].Code}
	require.Contains(t, codes, "password_mismatch")
	require.Contains(t, codes, "password_required")

	// Nothing was written.
	require.Empty(t, userRepo.updatedHash)
}

func TestChangePasswordRejectsUnchangedPassword(t *testing.T) {
	identity := &fakeIdentity{
		user:     testUser(false, true),
		password: "old-password",
	}
	svc := NewAuthService(identity, &fakeLoginAttempts{}, &fakeUserRepo{}, &fakeJWT{token: "t"}, &config.Config{})

	failures, err := svc.ChangePassword(context.Background(), "alice", "old-password", "old-password")
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Equal(t, "password_unchanged", failures[0].Code)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := newTestAuthService(&fakeIdentity{}, &fakeLoginAttempts{})

	_, err := svc.ChangePassword(context.Background(), "mallory", "x", "y")
	require.ErrorIs(t, err, utils.ErrInvalidCredentials)
}
