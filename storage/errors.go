package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a book or run is not found.
	ErrNotFound = errors.New("entity not found")
)
