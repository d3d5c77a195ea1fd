package actuator

import (
	"context"
	"time"
)

// Driver energises pumps for fixed durations.
//
// Activate blocks until the pump has been de-energised. A started
// activation always runs its full commanded duration: cancellation of
// ctx stops new work, but the backend never cuts power early in a way
// that leaves a relay latched on.
type Driver interface {
	// Activate runs the pump on the given pin for the given duration.
	//
	// Parameters:
	//   - ctx: Bounds how long the caller will wait; the pump itself
	//     always completes or is safely de-energised
	//   - pin: GPIO pin (BCM numbering)
	//   - duration: How long to energise the pump
	//
	// Returns:
	//   - error: ErrActuatorFault if the hardware reported failure
	Activate(ctx context.Context, pin int, duration time.Duration) error
}

// Logger defines the logging interface used by actuator backends.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
