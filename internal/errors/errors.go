package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ScanFailed indicates the scanner hit an unrecoverable orchestration error
	ScanFailed ErrorCode = "SCAN_FAILED"
	// SessionExists indicates a scan was started with a session_id that is already taken
	SessionExists ErrorCode = "SESSION_EXISTS"
	// SessionNotFound indicates the requested session does not exist
	SessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// QueryRejected indicates a SQL statement was refused (mutation, multiple statements)
	QueryRejected ErrorCode = "QUERY_REJECTED"
	// UnknownFunction indicates an unrecognized named query
	UnknownFunction ErrorCode = "UNKNOWN_FUNCTION"
	// InvalidParameter indicates a malformed or missing parameter
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// RouterMiss indicates a natural-language request matched no intent
	RouterMiss ErrorCode = "ROUTER_MISS"
	// UnknownAction indicates an unrecognized facade action
	UnknownAction ErrorCode = "UNKNOWN_ACTION"
	// StoreUnavailable indicates the database could not be opened or reached
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CoreError represents an analysis-core error with a stable code and message
type CoreError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new CoreError
func New(code ErrorCode, message string, cause error) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *CoreError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CoreError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CoreError) WithDetails(details interface{}) *CoreError {
	e.Details = details
	return e
}

// NewInvalidParameterError reports a missing or malformed parameter by name
func NewInvalidParameterError(name, problem string) *CoreError {
	return New(InvalidParameter, fmt.Sprintf("invalid parameter %q: %s", name, problem), nil)
}

// CodeOf extracts the ErrorCode from err, or InternalError when err carries none
func CodeOf(err error) ErrorCode {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
