package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrMissingField signals that a required field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidTerm signals a term without a string.
	ErrInvalidTerm = errors.New("invalid term")
	// ErrNoTerms signals an entry that would be left without terms.
	ErrNoTerms = errors.New("entry has no terms")
	// ErrDictNotFound signals an entry linked to an unknown dictionary.
	ErrDictNotFound = errors.New("dictionary not found")
	// ErrDictMismatch signals an entry nested under a dictionary it does not belong to.
	ErrDictMismatch = errors.New("entry belongs to another dictionary")
	// ErrHasEntries signals a dictionary that still owns entries.
	ErrHasEntries = errors.New("dictionary still has associated entries")
	// ErrInvalidQuery signals malformed query options.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrReadOnly signals a write against a read-only backend.
	ErrReadOnly = errors.New("read-only backend")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// FieldError reports a validation failure on a single field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error { return e.Err }

// NewFieldError creates a field validation error wrapping a sentinel.
func NewFieldError(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}
