// Package errors defines the HTTP error envelope and the predefined catalog.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard application error shape.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, for logs only
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail returns a copy carrying extra detail, so the catalog entries
// stay immutable.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause returns a copy carrying the original error.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// FromError converts any error into an AppError, falling back to the generic
// internal error.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// 400 Bad Request
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request is missing required parameters or is malformed.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrStateMismatch = &AppError{
		Code:       "STATE_MISMATCH",
		Message:    "The state parameter is missing, unknown or was already used.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrStateExpired = &AppError{
		Code:       "STATE_EXPIRED",
		Message:    "The login attempt expired. Start again.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrProviderResponse = &AppError{
		Code:       "PROVIDER_RESPONSE_INVALID",
		Message:    "The identity provider returned an unparseable response.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// 401 Unauthorized
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidGrant = &AppError{
		Code:       "INVALID_GRANT",
		Message:    "The identity provider rejected the authorization code.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 404 Not Found
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUnknownProvider = &AppError{
		Code:       "UNKNOWN_PROVIDER",
		Message:    "No identity provider is registered under that name.",
		HTTPStatus: http.StatusNotFound,
	}
)

// 429 Too Many Requests
var ErrTooManyRequests = &AppError{
	Code:       "TOO_MANY_REQUESTS",
	Message:    "Too many requests. Slow down.",
	HTTPStatus: http.StatusTooManyRequests,
}

// 5xx
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrProviderUnavailable = &AppError{
		Code:       "PROVIDER_UNAVAILABLE",
		Message:    "The identity provider is unreachable. Try again later.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrUpstreamUnavailable = &AppError{
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    "An upstream service is unreachable. Try again later.",
		HTTPStatus: http.StatusBadGateway,
	}
)
