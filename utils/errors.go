package utils

import (
	"fmt"
)

// AppError represents a custom application error with context
type AppError struct {
	Code    int                    // HTTP status code
	Message string                 // User-friendly message
	Err     error                  // Underlying error
	Context map[string]interface{} // Additional context
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// Common error constructors
func BadRequestError(message string, err error) *AppError {
	return NewAppError(400, message, err)
}

func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(401, message, err)
}

func ForbiddenError(message string, err error) *AppError {
	return NewAppError(403, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(404, message, err)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(500, message, err)
}

// Settings subsystem error constructors

// ValidationError rejects malformed input; Context carries the offending
// fields under "fields".
func ValidationError(message string, err error) *AppError {
	return NewAppError(422, message, err)
}

// ContrastViolationError rejects an accent color that fails the WCAG AA
// contrast check. The measured ratio is attached as context.
func ContrastViolationError(ratio float64) *AppError {
	return NewAppError(422, "Accent color does not meet WCAG AA contrast", nil).
		WithContext("ratio", ratio)
}

// RateLimitedError rejects a sensitive operation inside its cooldown window.
func RateLimitedError(message string) *AppError {
	return NewAppError(429, message, nil)
}

// RollbackInvalidError rejects an absent, consumed, or expired rollback token.
func RollbackInvalidError(message string) *AppError {
	return NewAppError(410, message, nil)
}

// StoreUnavailableError signals the settings store cannot be reached.
func StoreUnavailableError(err error) *AppError {
	return NewAppError(503, "Settings store is unavailable", err)
}

// AuthUnavailableError signals the identity provider cannot be reached.
func AuthUnavailableError(err error) *AppError {
	return NewAppError(502, "Identity provider is unavailable", err)
}

// IsCode reports whether err is an AppError with the given HTTP code.
func IsCode(err error, code int) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
