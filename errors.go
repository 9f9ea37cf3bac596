package termdex

import "github.com/kailas-cloud/termdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrAlreadyExists  = domain.ErrAlreadyExists
	ErrMissingField   = domain.ErrMissingField
	ErrInvalidTerm    = domain.ErrInvalidTerm
	ErrNoTerms        = domain.ErrNoTerms
	ErrDictNotFound   = domain.ErrDictNotFound
	ErrDictMismatch   = domain.ErrDictMismatch
	ErrHasEntries     = domain.ErrHasEntries
	ErrInvalidQuery   = domain.ErrInvalidQuery
	ErrReadOnly       = domain.ErrReadOnly
	ErrNotImplemented = domain.ErrNotImplemented
)

// FieldError reports a validation failure on one field of an input.
type FieldError = domain.FieldError
