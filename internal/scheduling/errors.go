package scheduling

import (
	"errors"
	"fmt"
)

// Kind classifies scheduling errors so transport layers can map them to
// status codes without string matching.
type Kind string

const (
	// KindValidation covers malformed input, invalid references, invalid
	// enum values, and patches with no editable fields.
	KindValidation Kind = "validation"
	// KindConflict signals the active-slot invariant was violated.
	KindConflict Kind = "conflict"
	// KindAuthorization signals the actor lacks permission for the
	// requested read or field set.
	KindAuthorization Kind = "authorization"
	// KindNotFound signals no record with the given id.
	KindNotFound Kind = "not_found"
	// KindConfiguration signals an inconsistent account state, such as an
	// employee with no clinic assignment.
	KindConfiguration Kind = "configuration"
)

// Error is a terminal, caller-recoverable scheduling error. None of these
// are retried internally.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("scheduling: %s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func conflictError(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func authorizationError(format string, args ...any) *Error {
	return newError(KindAuthorization, format, args...)
}

func notFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func configurationError(format string, args ...any) *Error {
	return newError(KindConfiguration, format, args...)
}

// KindOf extracts the scheduling error kind, if err carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a scheduling error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
