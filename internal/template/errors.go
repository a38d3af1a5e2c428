package template

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrValidation           = errors.New("validation failed")
)

// MissingFieldError reports a required field with no value and no default.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field '%s'", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingRequiredField }

// TypeMismatchError reports a value whose shape disagrees with its declared type.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field '%s' expected type '%s' but got '%s'", e.Field, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// ValidationError reports a violated validation rule.
type ValidationError struct {
	Field  string
	Rule   string // pattern, min_length, maximum, enum_values, ...
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field '%s' failed %s: %s", e.Field, e.Rule, e.Detail)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
