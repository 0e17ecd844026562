// Package apperror defines typed application errors shared by the service
// and HTTP layers. Services return *AppError values wrapping the sentinel
// errors below; the HTTP layer maps the sentinels to status codes and
// serializes Message/Fields into the error body.
package apperror

import (
	"fmt"

	"github.com/aquidolado/aqui/internal/common"
)

// AppError carries a human-readable message and, for validation failures,
// a per-field error map that clients surface next to the offending input.
type AppError struct {
	Err     error             // sentinel from internal/common
	Message string            // human-readable description
	Fields  map[string]string // optional field -> message, validation only
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     common.ErrorNotFound,
		Message: fmt.Sprintf("%s %d not found", resource, id),
	}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: common.ErrorForbidden, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: common.ErrorUnauthorized, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Err: common.ErrorAlreadyExists, Message: message}
}

// Validation builds a validation error from a field map. The top-level
// message stays generic; the detail lives per field.
func Validation(fields map[string]string) *AppError {
	return &AppError{
		Err:     common.ErrorValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// ValidationField is a shorthand for a single-field validation failure.
func ValidationField(field, message string) *AppError {
	return Validation(map[string]string{field: message})
}
