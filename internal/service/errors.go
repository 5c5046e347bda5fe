package service

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfOrder is returned when a stage is invoked while progress
	// disallows it. Callers may retry after completing the prerequisite.
	ErrOutOfOrder = errors.New("assessment stage out of order")

	// ErrInsufficientQuestionBank means the MCQ pool holds fewer than the
	// required number of questions; a short list is never returned.
	ErrInsufficientQuestionBank = errors.New("insufficient question bank")

	// ErrDependencyMissing blocks finalization when prerequisite MCQ, essay
	// or VR data is absent.
	ErrDependencyMissing = errors.New("prerequisite stage data missing")

	ErrSessionNotFound  = errors.New("vr session not found")
	ErrSessionCompleted = errors.New("vr session already completed")
	ErrResultNotReady   = errors.New("final result not ready")
)

// ValidationError reports malformed input with field-level detail.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
