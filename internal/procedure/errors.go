// Package procedure holds what every request handler ("procedure") shares: the
// error kinds returned to callers and the authorization middleware that guards
// protected procedures.
package procedure

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind is the machine-readable class of a procedure failure.
type Kind string

const (
	KindBadRequest         Kind = "BAD_REQUEST"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindTooManyRequests    Kind = "TOO_MANY_REQUESTS"
	KindInternal           Kind = "INTERNAL_SERVER_ERROR"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
)

var statusByKind = map[Kind]int{
	KindBadRequest:         http.StatusBadRequest,
	KindUnauthorized:       http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindConflict:           http.StatusConflict,
	KindTooManyRequests:    http.StatusTooManyRequests,
	KindInternal:           http.StatusInternalServerError,
	KindServiceUnavailable: http.StatusServiceUnavailable,
}

// Status returns the HTTP status for kind, 500 for unknown kinds.
func Status(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a failure with a kind the caller can act on.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrUnauthorized) works.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// New returns an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrUnauthorized    = New(KindUnauthorized, "not authenticated")
	ErrForbidden       = New(KindForbidden, "forbidden")
	ErrTooManyRequests = New(KindTooManyRequests, "too many requests, try again later")
	ErrInternal        = New(KindInternal, "internal server error")
)

// ErrorResponse is the body written for every failed procedure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    Kind   `json:"code"`
	Error   string `json:"error"`
}

// Abort stops the handler chain and writes err. Errors that are not *Error are
// reported as INTERNAL_SERVER_ERROR without leaking their message.
func Abort(c *gin.Context, err error) {
	var perr *Error
	if !errors.As(err, &perr) {
		_ = c.Error(err)
		perr = ErrInternal
	}
	c.AbortWithStatusJSON(Status(perr.Kind), ErrorResponse{
		Success: false,
		Code:    perr.Kind,
		Error:   perr.Message,
	})
}

// Fail is shorthand for Abort(c, New(kind, message)).
func Fail(c *gin.Context, kind Kind, message string) {
	Abort(c, New(kind, message))
}
