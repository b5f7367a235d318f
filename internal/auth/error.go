package auth

import "errors"

var (
	ErrLoginDisabled      = errors.New("admin login is disabled: no password configured")
	ErrJWTSecretNotSet    = errors.New("JWT_SECRET is not set")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidToken       = errors.New("invalid token")
)
