// Package errors defines the service error taxonomy shared by handlers and
// middleware.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of service error.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeUnauthorized  Code = "unauthorized"
	CodeInvalidToken  Code = "invalid_token"
	CodeForbidden     Code = "forbidden"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeRateLimited   Code = "rate_limit_exceeded"
	CodeInternal      Code = "internal_error"
	CodeUnprocessable Code = "unprocessable_entity"
)

// ServiceError carries an error code, client-facing message and HTTP status.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause.
func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a key/value pair for diagnostics.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// BadRequest builds a 400 error.
func BadRequest(message string) *ServiceError {
	return &ServiceError{Code: CodeBadRequest, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// InvalidToken builds a 401 error for token validation failures.
func InvalidToken(err error) *ServiceError {
	return &ServiceError{Code: CodeInvalidToken, Message: "Could not validate credentials", HTTPStatus: http.StatusUnauthorized, Err: err}
}

// Forbidden builds a 403 error.
func Forbidden(message string) *ServiceError {
	return &ServiceError{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

// NotFound builds a 404 error.
func NotFound(message string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// Conflict builds a 409 error.
func Conflict(message string) *ServiceError {
	return &ServiceError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// RateLimitExceeded builds a 429 error describing the enforced limit.
func RateLimitExceeded(limit int, window string) *ServiceError {
	e := &ServiceError{Code: CodeRateLimited, Message: "Rate limit exceeded", HTTPStatus: http.StatusTooManyRequests}
	return e.WithDetails("limit", limit).WithDetails("window", window)
}

// Internal builds a 500 error wrapping its cause.
func Internal(message string, err error) *ServiceError {
	return &ServiceError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}
