package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	CodeSlotTaken          ErrorCode = "SLOT_TAKEN"
	CodeInvalidSlot        ErrorCode = "INVALID_SLOT"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeIntegrityViolation ErrorCode = "INTEGRITY_VIOLATION"
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeInternal           ErrorCode = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeSlotTaken:
		return http.StatusConflict
	case CodeInvalidSlot:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// SlotTaken reports a booking conflict. The conflicting tuple is part of
// the message so callers can act on it.
func SlotTaken(hospitalID, date, timeOfDay string) *AppError {
	return &AppError{
		Code:    CodeSlotTaken,
		Message: fmt.Sprintf("time slot already booked: hospital=%s date=%s time=%s", hospitalID, date, timeOfDay),
	}
}

func InvalidSlot(message string) *AppError {
	return &AppError{Code: CodeInvalidSlot, Message: message}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Timeout(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: fmt.Sprintf("%s timed out", operation),
		Err:     err,
	}
}

func IntegrityViolation(message string, err error) *AppError {
	return &AppError{Code: CodeIntegrityViolation, Message: message, Err: err}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Err: err}
}

func Unauthorized(err error) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: "unauthorized", Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// FromStorage wraps a storage error, translating context deadline expiry
// into a Timeout so callers see a retryable failure instead of an opaque
// internal error.
func FromStorage(operation string, err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(operation, err)
	}
	return Internal(fmt.Errorf("%s: %w", operation, err))
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
