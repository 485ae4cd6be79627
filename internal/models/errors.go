package models

import "errors"

var (
	// ErrInvalidID is returned for identifiers that are not well-formed
	// ObjectID hex, before any lookup is made.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrNotFound covers a missing quiz or attempt. It is also the error
	// surfaced for attempts owned by another student, so existence is
	// never leaked.
	ErrNotFound = errors.New("not found")
	// ErrProfileMissing indicates the caller's account record is absent,
	// a data-integrity condition rather than a user mistake.
	ErrProfileMissing = errors.New("student profile missing")
	// ErrForbidden is the generic authorization failure for grade
	// mismatches; it deliberately carries no detail.
	ErrForbidden = errors.New("access denied")
	// ErrAttemptsExhausted is returned when a submission would exceed the
	// quiz's attemptsAllowed. No attempt record is written.
	ErrAttemptsExhausted = errors.New("no attempts remaining")
	// ErrInvalidSubmission is returned for submissions missing mandatory
	// fields.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrDuplicateAttempt signals a unique-index conflict on
	// (student, quiz, attemptNumber); submission recounts and retries.
	ErrDuplicateAttempt = errors.New("duplicate attempt number")
)

// ValidationError carries the authoring-constraint message back to the
// client as a 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
