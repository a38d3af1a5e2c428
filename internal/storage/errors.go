package storage

import "errors"

var (
	// ErrDuplicate indicates a record with the same source and identifier
	// is already stored.
	ErrDuplicate = errors.New("record already exists")

	// ErrNotFound indicates no stored record matched.
	ErrNotFound = errors.New("record not found")

	// ErrEmptyCriteria guards Remove against an unfiltered delete.
	ErrEmptyCriteria = errors.New("criteria select nothing; set All to match every record")

	// ErrInvalidRecord indicates a record without a source or identifier.
	ErrInvalidRecord = errors.New("record has no source or source_identifier")
)
