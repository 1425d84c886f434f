package service

import "errors"

var (
	// ErrUnauthorized is returned when no credential strategy accepts a reset request.
	ErrUnauthorized = errors.New("unauthorized - invalid secret or token")

	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRegistrationClosed = errors.New("registration limit reached")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownBoulder     = errors.New("unknown boulder")
	ErrProfileNotCreated  = errors.New("could not create user profile")
)

// ValidationError describes input that was rejected before touching storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
