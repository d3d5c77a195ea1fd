package engine

import "errors"

// Domain-specific errors for preparation operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrBusy is returned when a preparation is already in progress.
	// The machine pours one drink at a time.
	ErrBusy = errors.New("engine: preparation already in progress")

	// ErrInsufficientStock is returned when the stock check blocks a
	// preparation. Nothing was dispensed and nothing was debited.
	ErrInsufficientStock = errors.New("engine: insufficient stock")

	// ErrPumpNotCalibrated is returned when a required pump has no
	// usable flow rate. Detected before any pump is energised.
	ErrPumpNotCalibrated = errors.New("engine: pump not calibrated")

	// ErrDispenseFailed is returned when one or more pump activations
	// faulted. Poured volumes were still debited.
	ErrDispenseFailed = errors.New("engine: dispensing failed")

	// ErrCancelled is returned when the preparation was cancelled
	// between batches. Started activations ran out and were debited.
	ErrCancelled = errors.New("engine: preparation cancelled")

	// ErrNotFound is returned when a preparation record does not exist.
	ErrNotFound = errors.New("engine: preparation not found")
)
