package actuator

import "errors"

// Domain-specific errors for actuator operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrActuatorFault is returned when the hardware backend reported a
	// failure (non-zero script exit, missing script, injected fault).
	ErrActuatorFault = errors.New("actuator: activation failed")

	// ErrInvalidDuration is returned for non-positive activation durations.
	ErrInvalidDuration = errors.New("actuator: duration must be positive")

	// ErrInvalidPin is returned for negative GPIO pins.
	ErrInvalidPin = errors.New("actuator: pin must not be negative")
)
