package api

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of a gateway error.
type ErrorType string

const (
	// ErrorTypeUnauthorized means the request carried no usable session context.
	ErrorTypeUnauthorized ErrorType = "unauthorized"

	// ErrorTypeForbidden means the session is authenticated but lacks a
	// required role.
	ErrorTypeForbidden ErrorType = "forbidden"

	// ErrorTypeUpstream means the backend rejected the call with a non-2xx
	// status. The Status field carries the backend's status code.
	ErrorTypeUpstream ErrorType = "upstream_error"

	// ErrorTypeNotFound is the externally visible form of selected upstream
	// 404 responses.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeServer covers transport failures and unexpected internal errors.
	ErrorTypeServer ErrorType = "server_error"

	// ErrorTypeValidation means the request body or parameters were unusable
	// before any backend call was attempted.
	ErrorTypeValidation ErrorType = "validation_error"

	// ErrorTypeConflict means the request conflicts with the session's
	// current delegation state.
	ErrorTypeConflict ErrorType = "conflict"

	// ErrorTypeRateLimited means the caller exceeded its request budget.
	ErrorTypeRateLimited ErrorType = "rate_limited"
)

// APIError is the structured error attached to every failed response.
type APIError struct {
	Type    ErrorType `json:"type"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.Status)
}

// ErrorResponse wraps an APIError as the top-level JSON error body.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewUnauthorizedError creates an APIError for requests without a full
// session context.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeUnauthorized,
		Status:  http.StatusUnauthorized,
		Message: message,
	}
}

// NewForbiddenError creates an APIError for authenticated callers missing a
// required role.
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeForbidden,
		Status:  http.StatusForbidden,
		Message: message,
	}
}

// NewUpstreamError creates an APIError carrying a backend failure verbatim.
func NewUpstreamError(status int, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeUpstream,
		Status:  status,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// NewValidationError creates an APIError for requests rejected before any
// backend call.
func NewValidationError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewConflictError creates an APIError for requests that conflict with the
// session's delegation state.
func NewConflictError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeConflict,
		Status:  http.StatusConflict,
		Message: message,
	}
}

// NewRateLimitedError creates an APIError for callers over their request
// budget.
func NewRateLimitedError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeRateLimited,
		Status:  http.StatusTooManyRequests,
		Message: message,
	}
}

// NewInternalError creates an APIError for transport failures and unexpected
// internal errors.
func NewInternalError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServer,
		Status:  http.StatusInternalServerError,
		Message: message,
	}
}
