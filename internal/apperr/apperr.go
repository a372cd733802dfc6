// Package apperr implements the six-kind error taxonomy that every
// retrieval and context-intelligence component reports through: callers
// branch on Kind, not on concrete error types.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and (eventually, by a caller the
// core does not itself implement) HTTP-equivalent status mapping.
type Kind string

const (
	InvalidQuery    Kind = "invalid_query"
	MissingData     Kind = "missing_data"
	Upstream        Kind = "upstream"
	PartialUpstream Kind = "partial_upstream"
	Cancelled       Kind = "cancelled"
	Internal        Kind = "internal"
)

// Error wraps a Kind, a human-readable message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	// Degraded holds the result kind that still succeeded when this error
	// represents a PartialUpstream failure.
	Degraded string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func new_(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// New builds an error of the given kind without a message format.
func New(kind Kind, msg string) *Error { return new_(kind, msg, nil) }

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, msg string, cause error) *Error { return new_(kind, msg, cause) }

func InvalidQueryf(format string, args ...any) *Error {
	return new_(InvalidQuery, fmt.Sprintf(format, args...), nil)
}

func MissingDataf(format string, args ...any) *Error {
	return new_(MissingData, fmt.Sprintf(format, args...), nil)
}

func Upstreamf(cause error, format string, args ...any) *Error {
	return new_(Upstream, fmt.Sprintf(format, args...), cause)
}

// PartialUpstreamf records that one of two parallel collaborators failed
// while the other, identified by degraded, still returned usable results.
func PartialUpstreamf(cause error, degraded string, format string, args ...any) *Error {
	e := new_(PartialUpstream, fmt.Sprintf(format, args...), cause)
	e.Degraded = degraded
	return e
}

func Cancelledf(format string, args ...any) *Error {
	return new_(Cancelled, fmt.Sprintf(format, args...), nil)
}

func Internalf(cause error, format string, args ...any) *Error {
	return new_(Internal, fmt.Sprintf(format, args...), cause)
}

// KindOf classifies any error, defaulting unrecognized errors to Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}
