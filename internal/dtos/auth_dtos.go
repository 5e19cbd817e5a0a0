package dtos

// ----------------------
// Login
// ----------------------

// LoginRequest is the request body for the login endpoint. The two-factor
// fields are only consulted when the account has two-factor enabled.
type LoginRequest struct {
	Username                 string `json:"username" validate:"required"`
	Password                 string `json:"password" validate:"required"`
	RememberMe               bool   `json:"rememberMe"`
	TwoFactorToken           string `json:"twoFactorToken" validate:"omitempty,len=6,numeric"`
	TwoFactorRememberMachine bool   `json:"twoFactorRememberMachine"`
}

// LoginResponse is returned upon successful login.
type LoginResponse struct {
	UserId      int    `json:"userId"`
	DisplayName string `json:"displayName"`
	Token       string `json:"token"`

	// RequiresEmailValidation tells the client the account works but the
	// email address is still unconfirmed. Advisory only; never blocks login.
	RequiresEmailValidation bool `json:"requiresEmailValidation"`
}

// ----------------------
// Change password
// ----------------------

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ValidationErrorDetail is one reason a password change was refused. The
// full list rides in the error response's details field.
type ValidationErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ----------------------
// Logout
// ----------------------

type LogoutResponse struct {
	Message string `json:"message"`
}
