package services

import (
	"errors"
	"fmt"
	"strings"

	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// Error kinds surfaced by the core. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrStorage           = errors.New("storage failure")
)

// ValidationError collects field-level problems with an input.
type ValidationError struct {
	Fields []utils.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Loc, ".")+": "+f.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a problem at loc, e.g. Add("field required", "body", "phone").
func (e *ValidationError) Add(msg string, loc ...string) {
	e.Fields = append(e.Fields, utils.FieldError{Loc: loc, Msg: msg})
}

// Err returns nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func newValidationError(msg string, loc ...string) *ValidationError {
	v := &ValidationError{}
	v.Add(msg, loc...)
	return v
}

// storageErr translates repository failures. Not-found and duplicates keep their meaning;
// everything else becomes ErrStorage.
func storageErr(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, repositories.ErrDuplicateKey):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
	}
}
