package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure kinds surfaced by the batch report. Match with errors.Is.
var (
	// ErrUnreadableDocument marks a document that could not be parsed as a
	// PDF or has a corrupt text layer.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrOCREngine marks an unavailable or misconfigured recognition backend.
	ErrOCREngine = errors.New("ocr engine unavailable")

	// ErrReferenceTableFormat marks a reference table missing an expected
	// field column.
	ErrReferenceTableFormat = errors.New("reference table malformed")

	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// FailureKind classifies an error for the user-visible batch report.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrOCREngine):
		return "OCR_ENGINE"
	case errors.Is(err, ErrUnreadableDocument):
		return "UNREADABLE_DOCUMENT"
	case errors.Is(err, ErrReferenceTableFormat):
		return "REFERENCE_TABLE"
	}
	return "OTHER"
}
