package interview

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrGeneration      = errors.New("question generation failed")
	ErrPersistence     = errors.New("session persistence failed")
)

// InputError carries a user-facing validation message.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(message string) error {
	return &InputError{Message: message}
}
