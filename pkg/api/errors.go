package api

import (
	"errors"
	"fmt"
)

type (
	// ErrorKind classifies failures surfaced by the orchestration engine
	ErrorKind string

	// Error is a classified engine failure carrying a structured code
	Error struct {
		Err  error
		Kind ErrorKind
		Code string
	}
)

const (
	// KindConfiguration errors are always fatal and never retried
	KindConfiguration ErrorKind = "configuration"

	// KindRemote errors are recovered by a fallback when one exists
	KindRemote ErrorKind = "remote"

	// KindUserAbort is reported through OnCancel, never as an error
	KindUserAbort ErrorKind = "user_abort"
)

var ErrUserAbort = errors.New("buyer aborted the payment")

// ConfigurationError wraps err as a fatal configuration failure
func ConfigurationError(code string, err error) *Error {
	return &Error{Kind: KindConfiguration, Code: code, Err: err}
}

// ConfigurationErrorf formats a fatal configuration failure
func ConfigurationErrorf(code, format string, args ...any) *Error {
	return ConfigurationError(code, fmt.Errorf(format, args...))
}

// RemoteError wraps err as a recoverable remote failure
func RemoteError(code string, err error) *Error {
	return &Error{Kind: KindRemote, Code: code, Err: err}
}

// UserAbortError reports that the buyer abandoned the attempt
func UserAbortError(code string) *Error {
	return &Error{Kind: KindUserAbort, Code: code, Err: ErrUserAbort}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a classified error. Unclassified errors are
// treated as remote failures
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRemote
}

// CodeOf returns the structured code of a classified error, or the
// provided default
func CodeOf(err error, def string) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return def
}

// IsConfigurationError returns whether err is a fatal configuration error
func IsConfigurationError(err error) bool {
	return err != nil && KindOf(err) == KindConfiguration
}
