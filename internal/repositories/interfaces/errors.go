package interfaces

import "errors"

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrNotModified is returned when a conditional write matched no
	// document: the precondition (status, rider slot, credited flag,
	// version) no longer holds.
	ErrNotModified = errors.New("conditional write matched no document")

	// ErrDuplicateKey is returned when a unique index rejects the write.
	ErrDuplicateKey = errors.New("duplicate key")
)
