package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the front-end surfaces to a user.
type Kind string

const (
	KindUnauthorized         Kind = "unauthorized"
	KindRequestFailed        Kind = "request_failed"
	KindValidationFailed     Kind = "validation_failed"
	KindDecodeFailed         Kind = "decode_failed"
	KindExternalScriptFailed Kind = "external_script_failed"
	KindPaymentFailed        Kind = "payment_failed"
	KindTimeout              Kind = "timeout"
)

// MsgUnauthorized is shown for every 401/403, whatever the body said.
const MsgUnauthorized = "You are not authorized. Please log in."

var (
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrRequestFailed        = &Error{Kind: KindRequestFailed}
	ErrValidationFailed     = &Error{Kind: KindValidationFailed}
	ErrDecodeFailed         = &Error{Kind: KindDecodeFailed}
	ErrExternalScriptFailed = &Error{Kind: KindExternalScriptFailed}
	ErrPaymentFailed        = &Error{Kind: KindPaymentFailed}
	ErrTimeout              = &Error{Kind: KindTimeout}
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Body    string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can write errors.Is(err, domain.ErrUnauthorized).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NewError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing text for err, falling back to def.
func Message(err error, def string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if def != "" {
		return def
	}
	return err.Error()
}
