package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("dashboard: validation failed")
	// ErrNotFound reports a missing or deleted configuration.
	ErrNotFound = errors.New("dashboard: configuration not found")
	// ErrStorageWrite wraps backend failures raised while persisting.
	ErrStorageWrite = errors.New("dashboard: storage write failed")
	// ErrIndexOutOfRange reports an item index outside the in-progress configuration.
	ErrIndexOutOfRange = errors.New("dashboard: item index out of range")

	errMissingStore = errors.New("dashboard: config store not configured")
)

// ValidationError describes user input that failed a precondition.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "dashboard: " + e.Message
	}
	return fmt.Sprintf("dashboard: %s: %s", e.Field, e.Message)
}

// Is lets callers match any validation failure with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func storageWriteError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageWrite, op, err)
}

func notFoundError(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
