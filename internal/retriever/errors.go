package retriever

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/learner/internal/mapping"
	"github.com/matsen/learner/internal/normalize"
	"github.com/matsen/learner/internal/template"
)

// Identifier resolution errors.
var (
	ErrInvalidIdentifier   = errors.New("no retriever matches identifier")
	ErrAmbiguousIdentifier = errors.New("identifier matches multiple retrievers")
	ErrUnknownRetriever    = errors.New("unknown retriever")
)

// AmbiguousIdentifierError lists every source whose pattern matched.
type AmbiguousIdentifierError struct {
	Input   string
	Sources []string
}

func (e *AmbiguousIdentifierError) Error() string {
	return fmt.Sprintf("identifier %q matches multiple retrievers: %s", e.Input, strings.Join(e.Sources, ", "))
}

func (e *AmbiguousIdentifierError) Is(target error) bool { return target == ErrAmbiguousIdentifier }

// IsDataError reports whether err comes from processing a response
// (malformed body, missing field, type mismatch, validation or transform
// failure) rather than from configuration or the network.
func IsDataError(err error) bool {
	return errors.Is(err, normalize.ErrMalformedResponse) ||
		errors.Is(err, template.ErrMissingRequiredField) ||
		errors.Is(err, template.ErrTypeMismatch) ||
		errors.Is(err, template.ErrValidation) ||
		errors.Is(err, mapping.ErrTransform)
}

// IsIdentifierError reports whether err is an invalid or ambiguous
// identifier.
func IsIdentifierError(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier) || errors.Is(err, ErrAmbiguousIdentifier)
}
