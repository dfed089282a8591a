package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeCorrupt      ErrorCode = "CORRUPT"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors. The user-facing messages of the credential,
// conflict, and task-not-found errors are part of the HTTP contract and
// must not be reworded casually.
var (
	ErrUserNotFound    = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound    = NewError(ErrCodeNotFound, "Task not found")
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")

	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "authentication required")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid request body")

	ErrFieldsRequired     = NewError(ErrCodeInvalid, "All fields are required")
	ErrUsernameTaken      = NewError(ErrCodeConflict, "Username already exists")
	ErrEmailTaken         = NewError(ErrCodeConflict, "Email already registered")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "Invalid username or password")

	ErrTitleRequired = NewError(ErrCodeInvalid, "title is required")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
