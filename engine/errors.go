package engine

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField  = errors.New("engine: missing required case field")
	ErrLookupFailure = errors.New("engine: precedent lookup failed")
	ErrInvalidTier   = errors.New("engine: invalid tier")
)

// FieldError reports which case attribute is absent or malformed.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrMissingField, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

func invalidTier(tier int) error {
	return fmt.Errorf("%w: %d", ErrInvalidTier, tier)
}
