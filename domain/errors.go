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
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
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

// Common domain errors.
var (
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrIdentityNotFound = NewError(ErrCodeNotFound, "identity not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")

	// Authorization gate.
	ErrAccessDenied   = NewError(ErrCodeForbidden, "access denied")
	ErrForbiddenField = NewError(ErrCodeForbidden, "users can only update task status")

	// Change validation.
	ErrSelfAssignment     = NewError(ErrCodeInvalid, "managers cannot assign tasks to themselves")
	ErrAssigneeNotFound   = NewError(ErrCodeNotFound, "assigned identity not found")
	ErrAssigneeIsManager  = NewError(ErrCodeInvalid, "cannot assign tasks to managers")
	ErrDueDateInPast      = NewError(ErrCodeInvalid, "due date cannot be before today")
	ErrCommentRequired    = NewError(ErrCodeInvalid, "status change requires a comment")
	ErrTitleRequired      = NewError(ErrCodeInvalid, "title must not be empty")
	ErrInvalidStatus      = NewError(ErrCodeInvalid, "unknown task status")
	ErrInvalidPriority    = NewError(ErrCodeInvalid, "unknown task priority")
)

// PersistenceError marks a failed store write that aborted a mutation.
func PersistenceError(err error) *Error {
	return WrapError(ErrCodeInternal, "task store write failed", err)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
