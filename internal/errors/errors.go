package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeAuthRequired indicates the route needs a valid session and none was presented.
	ErrCodeAuthRequired ErrorCode = "auth_required"
	// ErrCodeNotFound indicates a required upstream entity was absent.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates the operation is blocked by existing dependents.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeUpstream indicates a network or decoding fault against the content API or OAuth provider.
	ErrCodeUpstream ErrorCode = "upstream"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodeUnknown is the fallback for anything unclassified.
	ErrCodeUnknown ErrorCode = "unknown"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Action describes the user-level operation that was attempted, e.g. "Query article: abc".
	Action string
	// Message is a human-readable reason shown to the user
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	msg := e.Message
	if e.Action != "" {
		msg = e.Action + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorSignal returns the action and reason pair shown on the error page.
func (e *AppError) ErrorSignal() (string, string) {
	reason := e.Message
	if reason == "" {
		reason = string(e.Code)
	}
	return e.Action, reason
}

func newError(code ErrorCode, action, message string) *AppError {
	return &AppError{Code: code, Action: action, Message: message}
}

// AuthRequired creates a new AuthRequired error.
func AuthRequired(action, message string) *AppError {
	return newError(ErrCodeAuthRequired, action, message)
}

// NotFound creates a new NotFound error.
func NotFound(action, message string) *AppError {
	return newError(ErrCodeNotFound, action, message)
}

// NotFoundf creates a new NotFound error with formatted action.
func NotFoundf(message, actionFormat string, args ...any) *AppError {
	return newError(ErrCodeNotFound, fmt.Sprintf(actionFormat, args...), message)
}

// Conflict creates a new Conflict error.
func Conflict(action, message string) *AppError {
	return newError(ErrCodeConflict, action, message)
}

// Validation creates a new Validation error.
func Validation(action, message string) *AppError {
	return newError(ErrCodeValidation, action, message)
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, action, message string) *AppError {
	e := newError(ErrCodeValidation, action, message)
	e.Field = field
	return e
}

// Upstream wraps a transport or decode failure against an external service.
// Context deadline and cancellation causes are classified as Timeout and Canceled.
func Upstream(err error, action, message string) *AppError {
	if err == nil {
		return nil
	}
	code := ErrCodeUpstream
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		code = ErrCodeCanceled
	}
	return &AppError{Code: code, Action: action, Message: message, Cause: err}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, action, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Action:  action,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted action.
func Wrapf(err error, code ErrorCode, message, actionFormat string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(actionFormat, args...), message)
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsAuthRequired checks if an error is an AuthRequired error.
func IsAuthRequired(err error) bool {
	return isCode(err, ErrCodeAuthRequired)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsUpstream checks if an error is an Upstream error.
func IsUpstream(err error) bool {
	return isCode(err, ErrCodeUpstream)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool {
	return isCode(err, ErrCodeCanceled)
}

// GetCode returns the ErrorCode from an error. Errors that are not an AppError report ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeUnknown
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
