// Package apperrors defines the closed set of error kinds the service
// reports: configuration problems, request validation, document extraction,
// vector index availability, model inference, and polling timeouts. Handlers
// and the ingestion job runner classify failures by Kind instead of matching
// message strings.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for reporting and HTTP mapping.
type Kind string

const (
	KindConfiguration    Kind = "configuration"
	KindValidation       Kind = "validation"
	KindExtraction       Kind = "extraction"
	KindEmptyDocument    Kind = "empty_document"
	KindIndexUnavailable Kind = "index_unavailable"
	KindInference        Kind = "inference"
	KindNoDocument       Kind = "no_document"
	KindTimeout          Kind = "timeout"
	KindUnknown          Kind = "unknown"
)

// Error is a classified error. Message is safe to return to clients; Err
// holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain, or KindUnknown if the chain
// carries no classification.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
