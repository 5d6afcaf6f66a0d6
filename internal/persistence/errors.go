package persistence

import "errors"

var (
	// ErrNotFound is returned by Load when no document has been saved yet.
	ErrNotFound = errors.New("persistence: not found")
	// ErrCorrupt is returned when a stored document cannot be decoded.
	ErrCorrupt = errors.New("persistence: corrupt document")
)
