package inventory

import "errors"

// Domain-specific errors for inventory operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when no level exists for an ingredient.
	ErrNotFound = errors.New("inventory: level not found")

	// ErrInvalidVolume is returned when a negative volume is supplied.
	ErrInvalidVolume = errors.New("inventory: volume must not be negative")

	// ErrInvalidCapacity is returned when a non-positive capacity is supplied.
	ErrInvalidCapacity = errors.New("inventory: capacity must be positive")

	// ErrLedgerWrite is returned when a level change could not be persisted.
	// The in-memory level is still updated; callers should log and continue.
	ErrLedgerWrite = errors.New("inventory: persisting level failed")
)
