package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates a response body could not be parsed.
var ErrMalformedResponse = errors.New("malformed response")

// MalformedResponseError describes a parse failure for one wire format.
type MalformedResponseError struct {
	Format string // xml or json
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Format, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func malformed(format string, err error) error {
	return &MalformedResponseError{Format: format, Err: err}
}
