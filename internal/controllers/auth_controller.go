package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nickbelling/FlexFlow/internal/dtos"
	"github.com/nickbelling/FlexFlow/internal/middleware"
	"github.com/nickbelling/FlexFlow/internal/services"
	"github.com/nickbelling/FlexFlow/internal/utils"
)

// AuthController exposes the endpoints for logging in/out, changing
// passwords, and two-factor authentication.
type AuthController struct {
	authService  services.AuthService
	currentToken services.CurrentTokenService
}

func NewAuthController(authService services.AuthService, currentToken services.CurrentTokenService) *AuthController {
	return &AuthController{
		authService:  authService,
		currentToken: currentToken,
	}
}

var validate = validator.New()

// getUsernameFromContext returns the subject AuthMiddleware stored, or ""
// on an unprotected route.
func getUsernameFromContext(r *http.Request) string {
	username, _ := r.Context().Value(middleware.ContextKeyUsername).(string)
	return username
}

// ---------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------

// Login attempts to sign in the given user.
//
//	200 → authenticated; body carries the bearer token
//	401 → unknown user, wrong password, bad two-factor code, or locked
//	428 → credentials valid but a two-factor code must be supplied
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	result, err := c.authService.Login(r.Context(), req.Username, req.Password, req.TwoFactorToken)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrAccountLocked):
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeLockedAccount, err.Error(), nil, err)
		case errors.Is(err, utils.ErrInvalidCredentials):
			// Unknown username, wrong password, and a bad two-factor code all
			// produce this same response.
			utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Login failed", nil, err)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Login failed", nil, err)
		}
		return
	}

	if result.RequiresTwoFactor {
		utils.RespondErrorWithCode(
			w, http.StatusPreconditionRequired, utils.ErrCodeTwoFactorRequired,
			"A two-factor authentication code is required", nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{
		UserId:                  result.User.ID,
		DisplayName:             result.User.DisplayName,
		Token:                   result.Token,
		RequiresEmailValidation: result.RequiresEmailValidation,
	})
}

// ---------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------

// Logout blacklists the current request's bearer token. The token stays
// cryptographically valid until it expires, so blacklisting is what
// actually ends the session.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.currentToken.Blacklist(r.Context(), r); err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to logout", nil, err)
		return
	}

	utils.Logger.Infof("User %q logged out; token blacklisted", getUsernameFromContext(r))
	utils.RespondWithJSON(w, http.StatusOK, dtos.LogoutResponse{Message: "Logged out successfully"})
}

// ---------------------------------------------------------------------
// Change password
// ---------------------------------------------------------------------

// ChangePassword enables a user to change their password. Policy failures
// come back as 400 with the individual reasons listed in details.
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dtos.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
		return
	}

	username := getUsernameFromContext(r)
	if username == "" {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authenticated", nil)
		return
	}

	failures, err := c.authService.ChangePassword(r.Context(), username, req.OldPassword, req.NewPassword)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to change password", nil, err)
		return
	}
	if len(failures) > 0 {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Password change failed", failures)
		return
	}

	w.WriteHeader(http.StatusOK)
}
