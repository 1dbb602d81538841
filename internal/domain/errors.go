package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrResultNotFound indicates no result exists for the given ID.
	ErrResultNotFound = errors.New("result not found")
	// ErrSessionNotFound is returned when a quiz session is unknown or was swept.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSubmissionInFlight is returned when a submit is already being processed.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrAlreadySubmitted is returned once a session has produced its result.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrInvalidState is returned for operations not allowed in the current session state.
	ErrInvalidState = errors.New("operation not allowed in current session state")
	// ErrUnauthorized is returned for bad admin credentials or tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports bad caller input. It blocks the transition that was attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// BackendError wraps any failure from a store, cache or broker.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// WrapBackend tags err as a BackendError for op. Nil stays nil and errors that
// are already typed are returned untouched.
func WrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}

// PreconditionError is returned when a computation receives input it cannot
// produce a meaningful value for.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return "precondition violated: " + e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsBackend reports whether err is a BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
