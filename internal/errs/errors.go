// Package errs is the error vocabulary shared by every dbanalyser layer.
//
// Drivers translate native failures (MySQL error numbers, S3 error codes,
// context deadlines) into an *Error carrying an ErrKind. Layers above may
// add context with fmt.Errorf("...: %w", err); the kind survives wrapping
// and is what the CLI and the HTTP server act on.
//
//	if errs.IsPermissionDenied(err) {
//	    // the analysis user lacks SELECT on information_schema
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, no object, no archived analysis
	ErrKindConnectionFailed         // cannot reach the backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // catalog query or storage operation error
	ErrKindInvalidInput             // bad arguments or malformed catalog rows
	ErrKindPermissionDenied         // access denied / auth failure
)

var kindNames = [...]string{
	ErrKindUnknown:          "unknown",
	ErrKindNotFound:         "not_found",
	ErrKindConnectionFailed: "connection_failed",
	ErrKindTimeout:          "timeout",
	ErrKindQueryFailed:      "query_failed",
	ErrKindInvalidInput:     "invalid_input",
	ErrKindPermissionDenied: "permission_denied",
}

func (k ErrKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[ErrKindUnknown]
	}
	return kindNames[k]
}

// Error is a classified failure. Cause keeps the native error for logs
// and for errors.Is / errors.As.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies cause under kind.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// ErrKindUnknown when there is none.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// Is reports whether err's chain is classified as kind.
func Is(err error, kind ErrKind) bool { return err != nil && KindOf(err) == kind }

func IsNotFound(err error) bool         { return Is(err, ErrKindNotFound) }
func IsTimeout(err error) bool          { return Is(err, ErrKindTimeout) }
func IsConnectionFailed(err error) bool { return Is(err, ErrKindConnectionFailed) }
func IsQueryFailed(err error) bool      { return Is(err, ErrKindQueryFailed) }
func IsInvalidInput(err error) bool     { return Is(err, ErrKindInvalidInput) }
func IsPermissionDenied(err error) bool { return Is(err, ErrKindPermissionDenied) }
