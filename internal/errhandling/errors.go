// Package errhandling provides error types, classification, and retry
// utilities for the Classmap runtime. Errors are classified into categories
// that determine both the CLI exit behavior and the HTTP status the
// dashboard server responds with.
package errhandling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryIO represents file-system errors while reading the dataset or
	// boundary catalog. Fatal at startup; retryable from the reload watcher.
	CategoryIO ErrorCategory = "io"

	// CategorySchema represents malformed input data (bad CSV rows, invalid
	// GeoJSON, config schema violations). Never retryable.
	CategorySchema ErrorCategory = "schema"

	// CategoryInput represents caller input errors, e.g. a classification
	// filter value that is not convertible to an integer. Never retryable;
	// the dashboard server maps these to 400.
	CategoryInput ErrorCategory = "input"

	// CategoryNotFound represents lookups for unknown views or bookmarks.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryRender represents view rendering failures.
	CategoryRender ErrorCategory = "render"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Retryable indicates whether the error is transient and can be retried.
	Retryable bool

	// Code is a stable machine-readable error code (e.g. INVALID_SELECTION).
	Code string

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error (%s): %s", e.Category, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// NewIOError creates a ClassifiedError for file-system errors.
func NewIOError(code, message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryIO,
		Retryable:   true,
		Code:        code,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewSchemaError creates a ClassifiedError for malformed data.
func NewSchemaError(code, message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategorySchema,
		Retryable:   false,
		Code:        code,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewInputError creates a ClassifiedError for caller input errors.
func NewInputError(code, message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryInput,
		Retryable:   false,
		Code:        code,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewNotFoundError creates a ClassifiedError for unknown resources.
func NewNotFoundError(code, message string) *ClassifiedError {
	return &ClassifiedError{
		Category:  CategoryNotFound,
		Retryable: false,
		Code:      code,
		Message:   message,
	}
}

// NewRenderError creates a ClassifiedError for view rendering failures.
func NewRenderError(code, message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryRender,
		Retryable:   false,
		Code:        code,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// Classify classifies any error into a ClassifiedError.
// Already-classified errors pass through; file-system errors become
// CategoryIO; context cancellation is non-retryable; everything else is
// CategoryUnknown and non-retryable (this runtime has no transient
// network surface where optimistic retries would pay off).
func Classify(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{Category: CategoryUnknown, Retryable: false, Message: "nil error"}
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{
			Category:    CategoryUnknown,
			Retryable:   false,
			Message:     "canceled",
			OriginalErr: err,
		}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &ClassifiedError{
			Category:    CategoryIO,
			Retryable:   true,
			Message:     fmt.Sprintf("file error: %s %s", pathErr.Op, pathErr.Path),
			OriginalErr: err,
		}
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Retryable:   false,
		Message:     err.Error(),
		OriginalErr: err,
	}
}

// IsRetryable returns true if the error is classified as retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable
}

// GetCategory returns the error category for a given error.
func GetCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	return Classify(err).Category
}

// HTTPStatus maps an error to the HTTP status code the dashboard server
// should respond with.
func HTTPStatus(err error) int {
	switch GetCategory(err) {
	case CategoryInput:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategorySchema:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
