// Package apperr holds the error taxonomy shared by the auth and admin services.
// Components wrap lower-layer failures in an *Error carrying a Kind; only the
// HTTP adapters turn a Kind into a status code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindInitialization
	KindConnection
	KindSerialization
	KindPermissionDenied
	KindNotFound
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindInitialization:
		return "initialization error"
	case KindConnection:
		return "connection error"
	case KindSerialization:
		return "serialization error"
	case KindPermissionDenied:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindInvalidInput:
		return "invalid input"
	default:
		return "unknown error"
	}
}

// Error is a classified failure. Msg says which step failed; Err is the
// underlying cause, if any.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindNotFound && e.Msg != "":
		return e.Msg + " not found"
	case e.Kind == KindNotFound:
		return "not found"
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same kind, so callers can
// write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels, for errors.Is.
var (
	ErrInitialization   = &Error{Kind: KindInitialization}
	ErrConnection       = &Error{Kind: KindConnection}
	ErrSerialization    = &Error{Kind: KindSerialization}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
)

func Initialization(msg string) error {
	return &Error{Kind: KindInitialization, Msg: msg}
}

func Connection(msg string, err error) error {
	return &Error{Kind: KindConnection, Msg: msg, Err: err}
}

func Serialization(msg string, err error) error {
	return &Error{Kind: KindSerialization, Msg: msg, Err: err}
}

func PermissionDenied(msg string) error {
	return &Error{Kind: KindPermissionDenied, Msg: msg}
}

// NotFound names the missing thing, e.g. NotFound("session") reads
// "session not found".
func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Msg: what}
}

func InvalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
