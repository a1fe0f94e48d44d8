package bracket

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState             = errors.New("invalid state")
	ErrAlreadyGenerated         = errors.New("brackets already generated")
	ErrInsufficientParticipants = errors.New("at least two confirmed registrations are required")
	ErrNotFound                 = errors.New("not found")
	ErrValidation               = errors.New("validation failed")
	ErrForbidden                = errors.New("operation not allowed for the current user")
)

// ValidationError describes a malformed input field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
