package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the module.
type ErrorCode string

// Lookup error codes
const (
	ErrElementNotFound ErrorCode = "ELEMENT_NOT_FOUND"
	ErrStaleElement    ErrorCode = "STALE_ELEMENT"
	ErrInvalidLocator  ErrorCode = "INVALID_LOCATOR"
	ErrInvalidFilter   ErrorCode = "INVALID_FILTER"
)

// Wait error codes
const (
	ErrWaitTimeout ErrorCode = "WAIT_TIMEOUT"
	ErrCancelled   ErrorCode = "CANCELLED"
)

// Driver error codes
const (
	ErrDriverError      ErrorCode = "DRIVER_ERROR"
	ErrDriverClosed     ErrorCode = "DRIVER_CLOSED"
	ErrNoDocument       ErrorCode = "NO_DOCUMENT"
	ErrUnsupported      ErrorCode = "UNSUPPORTED"
	ErrInvalidConfig    ErrorCode = "INVALID_CONFIG"
	ErrCaptureFailed    ErrorCode = "CAPTURE_FAILED"
	ErrSourceUnreadable ErrorCode = "SOURCE_UNREADABLE"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Driver    string    `json:"driver,omitempty"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithDriver sets the driver name.
func (e *Error) WithDriver(driver string) *Error {
	e.Driver = driver
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the outermost error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether any *Error in the chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// IsNotFound reports whether err means no element matched.
func IsNotFound(err error) bool {
	return HasCode(err, ErrElementNotFound)
}

// IsStale reports whether err means an element reference went stale
// between lookup and use.
func IsStale(err error) bool {
	return HasCode(err, ErrStaleElement)
}

// NotFound builds an ELEMENT_NOT_FOUND error for the given description.
func NotFound(what string) *Error {
	return Errorf(ErrElementNotFound, "no element matches %s", what)
}

// Stale builds a STALE_ELEMENT error for the given description.
func Stale(what string) *Error {
	return Errorf(ErrStaleElement, "stale element reference: %s", what).WithRetryable(true)
}
