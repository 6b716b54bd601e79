// Package apperr defines the error taxonomy shared by the intake client and
// the HTTP service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by who caused it and how it is surfaced.
type Kind int

const (
	// KindInternal is anything unclassified.
	KindInternal Kind = iota
	// KindValidation is a missing required field or an oversized payload.
	KindValidation
	// KindCollaborator is a failed call to the transcription or completion service.
	KindCollaborator
	// KindDevice is an unavailable or denied microphone.
	KindDevice
	// KindRecognition is a live recognition failure (no speech, not allowed, other).
	KindRecognition
	// KindAuth is a missing or invalid credential.
	KindAuth
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCollaborator:
		return "collaborator"
	case KindDevice:
		return "device"
	case KindRecognition:
		return "recognition"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to the status code the service answers with.
// Device and recognition errors never leave the client.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error carrying a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// New creates a classified error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Validation creates a KindValidation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Collaborator wraps a failed AI service call.
func Collaborator(message string, cause error) *Error {
	return Wrap(KindCollaborator, message, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-safe message of err, or fallback when err is not classified.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}

	return fallback
}
