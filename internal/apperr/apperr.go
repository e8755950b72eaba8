// Package apperr carries the error taxonomy shared by the access router and
// the project workflow: every failure surfaced to a caller has a Kind.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for programmatic handling.
type Kind string

const (
	KindUnknown             Kind = "unknown"
	KindAuth                Kind = "auth"
	KindStore               Kind = "store"
	KindInsufficientCredits Kind = "insufficient_credits"
	KindUpload              Kind = "upload"
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindConflict            Kind = "conflict"
	KindRateLimited         Kind = "rate_limited"
)

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err. A nil err yields a plain New.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func Auth(message string, err error) *Error { return Wrap(err, KindAuth, message) }
func Store(err error) *Error { return Wrap(err, KindStore, storeMessage(err)) }
func Upload(message string, err error) *Error { return Wrap(err, KindUpload, message) }
func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error { return New(KindNotFound, message) }
func Forbidden(message string) *Error { return New(KindForbidden, message) }
func Conflict(message string, err error) *Error { return Wrap(err, KindConflict, message) }
func InsufficientCredits(have, need int) *Error {
	return New(KindInsufficientCredits, fmt.Sprintf("insufficient credits: have %d, need %d", have, need))
}

// storeMessage surfaces the store's own message to the caller.
func storeMessage(err error) string {
	if err == nil {
		return "store error"
	}
	return err.Error()
}
