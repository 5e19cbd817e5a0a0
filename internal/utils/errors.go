package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons. "No such user" and "wrong password"
// deliberately share ErrInvalidCredentials so the controller cannot
// leak account existence.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountLocked      = errors.New("account_locked")
	ErrMissingSigningKey  = errors.New("missing_signing_key")
)
