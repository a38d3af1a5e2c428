package mapping

import (
	"errors"
	"fmt"
)

// ErrTransform indicates a transform could not be applied.
var ErrTransform = errors.New("transform failed")

// TransformError reports a failed transform step.
type TransformError struct {
	Field     string
	Transform string
	Detail    string
	Err       error
}

func (e *TransformError) Error() string {
	msg := fmt.Sprintf("%s transform: %s", e.Transform, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("field '%s': %s", e.Field, msg)
	}
	return msg
}

func (e *TransformError) Unwrap() error { return e.Err }

func (e *TransformError) Is(target error) bool { return target == ErrTransform }

func transformErr(kind, detail string, err error) *TransformError {
	return &TransformError{Transform: kind, Detail: detail, Err: err}
}
