package fetch

import (
	"errors"
	"fmt"
)

// Errors returned by Client.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrAuthError   = errors.New("access denied by source")
	ErrRateLimited = errors.New("source rate limit exceeded")
	ErrNetwork     = errors.New("network error")
	ErrTooLarge    = errors.New("response too large")
)

// APIError is an HTTP error status from a source.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error indicates the source has no such
// resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}
