// utils/errors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindUnauthenticated     ErrorKind = "unauthenticated"
	KindForbidden           ErrorKind = "forbidden"
	KindNotFound            ErrorKind = "not_found"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindSignatureInvalid    ErrorKind = "signature_invalid"
	KindInvalidEvent        ErrorKind = "invalid_event"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindInternal            ErrorKind = "internal"
)

// AppError carries a public message safe to return to clients and an optional
// wrapped cause that is only logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on kind so wrapped sentinels compare equal to fresh errors of the
// same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrUnauthenticated     = &AppError{Kind: KindUnauthenticated}
	ErrProfileNotFound     = &AppError{Kind: KindUnauthenticated, Message: "User profile not found"}
	ErrForbidden           = &AppError{Kind: KindForbidden, Message: "Insufficient permissions"}
	ErrNotFound            = &AppError{Kind: KindNotFound}
	ErrInvalidRange        = &AppError{Kind: KindValidation, Message: "End date must be after start date"}
	ErrInvalidTransition   = &AppError{Kind: KindInvalidTransition}
	ErrUpstreamUnavailable = &AppError{Kind: KindUpstreamUnavailable}
	ErrSignatureInvalid    = &AppError{Kind: KindSignatureInvalid, Message: "Webhook signature verification failed"}
	ErrInvalidEvent        = &AppError{Kind: KindInvalidEvent}
)

func Unauthenticated(msg string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: msg}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func Validation(msg string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg, Fields: fields}
}

// InvalidRange matches ErrInvalidRange and names the offending field.
func InvalidRange(field string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: ErrInvalidRange.Message,
		Fields:  map[string]string{field: ErrInvalidRange.Message},
	}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf("Cannot change booking status from %s to %s", from, to)}
}

func Upstream(msg string, err error) *AppError {
	return &AppError{Kind: KindUpstreamUnavailable, Message: msg, Err: err}
}

func InvalidEvent(msg string) *AppError {
	return &AppError{Kind: KindInvalidEvent, Message: msg}
}

// Internal wraps an unexpected failure; the cause never reaches the client.
func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func HTTPStatus(err error) int {
	ae, ok := AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation, KindSignatureInvalid, KindInvalidEvent:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
