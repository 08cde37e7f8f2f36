// Package apperr defines the error taxonomy shared by the service and its
// outer surfaces: validation errors (bad input, no remote call made),
// not-found errors, and store errors (non-2xx responses or transport
// failures).
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for envelope and status-code mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindStore
)

// Sentinels for errors.Is matching without unwrapping to *Error.
var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store")
)

// Error is a tagged error carrying its kind and, for store errors, the
// upstream HTTP status when one was received.
type Error struct {
	Kind    Kind
	Message string
	Status  int // HTTP status from the store, 0 when transport-level
}

func (e *Error) Error() string {
	return e.Message
}

// Is makes *Error match the kind sentinels via errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrStore:
		return e.Kind == KindStore
	}
	return false
}

// Validationf creates a validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Storef creates a store error. status is 0 for transport failures.
func Storef(status int, format string, args ...any) *Error {
	return &Error{Kind: KindStore, Status: status, Message: fmt.Sprintf(format, args...)}
}
