package dataset

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies why an export could not be loaded.
type ErrorCategory string

const (
	// ErrorTimeout indicates the source took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorUnavailable indicates the source could not be reached
	ErrorUnavailable ErrorCategory = "unavailable"

	// ErrorBadStatus indicates the source answered with a non-200 status
	ErrorBadStatus ErrorCategory = "bad_status"

	// ErrorBadData indicates the body is not a readable CSV export
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorMissingColumn indicates a required column header is absent
	ErrorMissingColumn ErrorCategory = "missing_column"
)

// SourceError wraps load failures with a category. Any SourceError aborts
// the refresh; no partial dataset is used.
type SourceError struct {
	Category   ErrorCategory
	Source     string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("source %s [%s]: %s: %v", e.Source, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("source %s [%s]: %s", e.Source, e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *SourceError) Unwrap() error {
	return e.Underlying
}

// NewSourceError creates a categorized source error.
func NewSourceError(category ErrorCategory, source, message string, underlying error) *SourceError {
	return &SourceError{
		Category:   category,
		Source:     source,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the category from an error, or "" when err is not a
// SourceError.
func GetCategory(err error) ErrorCategory {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}
