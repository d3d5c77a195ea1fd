package recipe

import "errors"

// Domain-specific errors for recipe operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a recipe does not exist.
	ErrNotFound = errors.New("recipe: not found")

	// ErrExists is returned when creating a recipe with a duplicate ID.
	ErrExists = errors.New("recipe: already exists")

	// ErrInvalidRecipe is returned when a recipe cannot be scaled,
	// typically because its nominal total volume is not positive.
	ErrInvalidRecipe = errors.New("recipe: invalid recipe")

	// ErrInvalidVolume is returned when a non-positive target volume is requested.
	ErrInvalidVolume = errors.New("recipe: target volume must be positive")
)
