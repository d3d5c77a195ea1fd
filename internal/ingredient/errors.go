package ingredient

import "errors"

// Domain-specific errors for ingredient operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when an ingredient does not exist.
	ErrNotFound = errors.New("ingredient: not found")

	// ErrExists is returned when creating an ingredient with a duplicate ID.
	ErrExists = errors.New("ingredient: already exists")
)
