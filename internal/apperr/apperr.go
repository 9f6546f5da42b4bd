// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package apperr classifies service failures so handlers can map them to
// HTTP responses without knowing which layer produced them.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category of an application error.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindAuthFailed
	KindUpstream
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrAuthFailed   = &Error{Kind: KindAuthFailed}
	ErrUpstream     = &Error{Kind: KindUpstream}
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindAuthFailed:
		return "authentication failed"
	case KindUpstream:
		return "upstream error"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized, KindAuthFailed:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a client-safe message and an optional cause.
// The cause is never shown to clients.
type Error struct {
	Err     error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidInput(message string) error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// AuthFailed wraps a credential failure behind a generic message.
func AuthFailed(message string, cause error) error {
	return &Error{Kind: KindAuthFailed, Message: message, Err: cause}
}

// Upstream wraps a record store or mail failure behind a generic message.
func Upstream(message string, cause error) error {
	return &Error{Kind: KindUpstream, Message: message, Err: cause}
}

// From extracts the application error from err. Errors without a kind are
// reported as upstream failures.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindUpstream, Message: http.StatusText(http.StatusInternalServerError), Err: err}
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return From(err).Kind.Status()
}

// PublicMessage returns the message that is safe to show to clients.
func PublicMessage(err error) string {
	appErr := From(err)
	if appErr.Message != "" {
		return appErr.Message
	}
	return http.StatusText(appErr.Kind.Status())
}
