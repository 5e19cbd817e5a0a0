package models

import "time"

// User represents a single FlexFlow user.
type User struct {
	ID               int       `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"display_name"`
	PasswordHash     string    `json:"-"`
	EmailConfirmed   bool      `json:"email_confirmed"`
	TOTPSecret       string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Role represents a user's ability to perform a given function within FlexFlow.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)
