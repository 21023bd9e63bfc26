package repositories

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	// ErrSequenceConflict means another writer took the sequence slot first.
	// The whole allocate-and-insert step may be retried.
	ErrSequenceConflict = errors.New("sequence conflict")
)
