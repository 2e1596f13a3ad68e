package domain

import "errors"

var (
	// ErrNotFound is returned when the target row of a read, update or
	// delete does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a trial request already exists
	// for the given email.
	ErrDuplicateEmail = errors.New("an account with this email already exists")

	// ErrDuplicateActiveEmail is returned when an active demo account
	// already exists for the given email.
	ErrDuplicateActiveEmail = errors.New("an active demo account already exists for this email")

	// ErrAccessDenied is returned when an intern acts outside their
	// assignment.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries a human-readable message safe to echo back to
// the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}
