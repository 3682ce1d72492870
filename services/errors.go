package services

import (
	"errors"
	"fmt"

	"github.com/4dave/corralio/store"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("sign in required")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnconfigured = errors.New("not configured")
	ErrUpstream     = errors.New("upstream failure")
)

// Error carries a message fit to show the user next to the form that failed.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// UserMessage returns the user-facing text of err, or fallback if it has none.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return fallback
}

// fromStore translates store sentinels into service kinds.
func fromStore(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrNotFound, what+" not found")
	}
	return err
}
