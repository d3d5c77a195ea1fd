package pump

import "errors"

// Domain-specific errors for pump operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a pump binding does not exist.
	ErrNotFound = errors.New("pump: not found")

	// ErrExists is returned when creating a binding with a duplicate ID or pin.
	ErrExists = errors.New("pump: already exists")

	// ErrNoPumpForIngredient is returned when no enabled pump dispenses
	// the requested ingredient.
	ErrNoPumpForIngredient = errors.New("pump: no enabled pump for ingredient")

	// ErrInvalidCalibration is returned when calibration inputs are not
	// positive, or the derived flow rate would be unusable.
	ErrInvalidCalibration = errors.New("pump: invalid calibration measurement")

	// ErrInvalidBinding is returned when a binding fails validation.
	ErrInvalidBinding = errors.New("pump: invalid binding")
)
