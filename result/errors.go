// Package result holds canonicalization records and writes them as text,
// JSON or CSV.
package result

import (
	"context"
	"errors"
	"strings"

	"github.com/lukemcguire/canonhost/canon"
)

// ErrorCategory represents the classification of a record error.
type ErrorCategory string

const (
	CategoryInvalidInput ErrorCategory = "invalid_input"
	CategoryDecode       ErrorCategory = "decode"
	CategoryCanceled     ErrorCategory = "canceled"
	CategoryUnknown      ErrorCategory = "unknown"
)

// DecodeError reports an input line that could not be decoded.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return "decode line: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ClassifyError determines the category of err. A nil error is unknown.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	if errors.Is(err, canon.ErrInvalidInput) {
		return CategoryInvalidInput
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return CategoryDecode
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryCanceled
	}

	// Errors that crossed a process or JSON boundary lose their identity.
	if strings.Contains(err.Error(), canon.ErrInvalidInput.Error()) {
		return CategoryInvalidInput
	}

	return CategoryUnknown
}

// FormatCategory returns a human-readable label for an error category.
func FormatCategory(cat ErrorCategory) string {
	switch cat {
	case CategoryInvalidInput:
		return "Invalid Input"
	case CategoryDecode:
		return "Undecodable Lines"
	case CategoryCanceled:
		return "Canceled"
	default:
		return "Other Errors"
	}
}
