package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"

	// State errors
	ErrorTypeCorruptState           ErrorType = "CORRUPT_STATE"
	ErrorTypePersistenceUnavailable ErrorType = "PERSISTENCE_UNAVAILABLE"

	// Media errors
	ErrorTypeImageDecode ErrorType = "IMAGE_DECODE"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewMissingFieldsError creates a validation error naming the absent fields
func NewMissingFieldsError(fields []string) *AppError {
	return NewValidationError(fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", "))).
		WithCode(CodeMissingField).
		WithDetails(map[string]interface{}{"fields": fields})
}

// NewUploadTooLargeError creates a validation error for a body over the size limit
func NewUploadTooLargeError(limit int64) *AppError {
	err := NewValidationError(fmt.Sprintf("upload exceeds the %d byte limit", limit)).
		WithCode(CodeUploadTooLarge)
	err.HTTPStatus = http.StatusRequestEntityTooLarge
	return err
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewCorruptStateError creates an error for a stored record that cannot be read back
func NewCorruptStateError(key string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeCorruptState,
		Message:    fmt.Sprintf("stored record '%s' is corrupt", key),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewPersistenceUnavailableError creates an error for a durable store that rejected an operation
func NewPersistenceUnavailableError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypePersistenceUnavailable,
		Message:    fmt.Sprintf("durable store unavailable during '%s'", operation),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// NewImageDecodeError creates an error for image input that cannot be decoded
func NewImageDecodeError(err error) *AppError {
	return &AppError{
		Type:       ErrorTypeImageDecode,
		Message:    "image could not be decoded",
		Cause:      err,
		HTTPStatus: http.StatusUnprocessableEntity,
		StackTrace: captureStackTrace(),
	}
}

// NewImageTooLargeError creates an error for an image whose pixel count is over budget
func NewImageTooLargeError(width, height, budget int) *AppError {
	return NewValidationError(fmt.Sprintf("image of %dx%d pixels exceeds the %d pixel limit", width, height, budget)).
		WithCode(CodeImageTooLarge).
		WithDetails(map[string]interface{}{"width": width, "height": height, "maxPixels": budget})
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsCorruptState checks if an error is a corrupt state error
func IsCorruptState(err error) bool {
	return IsType(err, ErrorTypeCorruptState)
}

// IsPersistenceUnavailable checks if an error is a persistence unavailable error
func IsPersistenceUnavailable(err error) bool {
	return IsType(err, ErrorTypePersistenceUnavailable)
}

// IsImageDecode checks if an error is an image decode error
func IsImageDecode(err error) bool {
	return IsType(err, ErrorTypeImageDecode)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
