package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Document errors
	ErrParse ErrorCode = "PARSE"

	// Entry errors
	ErrDuplicateTrigger ErrorCode = "DUPLICATE_TRIGGER"
	ErrComplexEntry     ErrorCode = "COMPLEX_ENTRY"
	ErrEntryNotFound    ErrorCode = "ENTRY_NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigWrite ErrorCode = "CONFIG_WRITE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileExists   ErrorCode = "FILE_EXISTS"
	ErrFileEncoding ErrorCode = "FILE_ENCODING"
	ErrDirNotFound  ErrorCode = "DIR_NOT_FOUND"
)

// EzmatchError represents a structured error with code and details
type EzmatchError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *EzmatchError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *EzmatchError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *EzmatchError) Is(target error) bool {
	var targetErr *EzmatchError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new EzmatchError with the given code and message
func New(code ErrorCode, message string) *EzmatchError {
	return &EzmatchError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new EzmatchError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *EzmatchError {
	return &EzmatchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an EzmatchError
func Wrap(err error, code ErrorCode, message string) *EzmatchError {
	if err == nil {
		return nil
	}
	return &EzmatchError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *EzmatchError {
	if err == nil {
		return nil
	}
	return &EzmatchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *EzmatchError) WithDetail(key string, value interface{}) *EzmatchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ezErr *EzmatchError
	if errors.As(err, &ezErr) {
		return ezErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an EzmatchError
func GetErrorCode(err error) ErrorCode {
	var ezErr *EzmatchError
	if errors.As(err, &ezErr) {
		return ezErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an EzmatchError
func GetErrorDetails(err error) map[string]interface{} {
	var ezErr *EzmatchError
	if errors.As(err, &ezErr) {
		return ezErr.Details
	}
	return nil
}
