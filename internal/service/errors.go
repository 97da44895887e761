package service

import "errors"

var (
	// ErrNotFound indicates the requested task or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an email is already registered.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned for any failed login, regardless of
	// which of email or password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrIncorrectPassword indicates the current password supplied with a
	// profile change did not match.
	ErrIncorrectPassword = errors.New("current password is incorrect")
	// ErrStorageUnavailable is returned by exports when no bucket is configured.
	ErrStorageUnavailable = errors.New("export storage not configured")
)

// ValidationError describes malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
