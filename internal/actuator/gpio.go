package actuator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// defaultGraceTimeout bounds how long an activation may overrun its
// commanded duration before the control script is killed.
const defaultGraceTimeout = 5 * time.Second

// GPIO drives pumps through an external pump-control script.
//
// Each activation runs one short-lived subprocess:
//
//	<interpreter> <script> activate <pin> <durationMs>
//
// The script energises the relay, sleeps for the duration, and
// de-energises it in a finally block, so power is cut even if the
// script itself fails mid-run. The Go side waits for the process with
// a deadline of duration plus a grace period; a process that overruns
// the grace is killed and reported as a fault.
type GPIO struct {
	interpreter string
	scriptPath  string
	grace       time.Duration
	logger      Logger
}

// GPIOConfig holds settings for the GPIO backend.
type GPIOConfig struct {
	// Interpreter runs the script (e.g., "python3").
	Interpreter string

	// ScriptPath is the pump control script.
	ScriptPath string

	// GraceTimeout is the allowed overrun beyond the commanded duration.
	// Zero selects the default of 5 seconds.
	GraceTimeout time.Duration
}

// NewGPIO creates a GPIO backend.
func NewGPIO(cfg GPIOConfig) *GPIO {
	grace := cfg.GraceTimeout
	if grace <= 0 {
		grace = defaultGraceTimeout
	}
	interpreter := cfg.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	return &GPIO{
		interpreter: interpreter,
		scriptPath:  cfg.ScriptPath,
		grace:       grace,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the backend.
func (g *GPIO) SetLogger(logger Logger) {
	g.logger = logger
}

// Activate runs the pump on the given pin for the given duration.
//
// The subprocess deadline is duration + grace, independent of ctx's
// own deadline: once the relay is energised we always wait for the
// script to de-energise it rather than abandoning a running pump.
func (g *GPIO) Activate(ctx context.Context, pin int, duration time.Duration) error {
	if pin < 0 {
		return ErrInvalidPin
	}
	if duration <= 0 {
		return ErrInvalidDuration
	}

	durationMS := duration.Milliseconds()

	// The script must be allowed to finish its pour; detach the kill
	// deadline from the caller's context.
	runCtx, cancel := context.WithTimeout(context.Background(), duration+g.grace)
	defer cancel()

	cmd := exec.CommandContext(runCtx, g.interpreter, g.scriptPath,
		"activate",
		strconv.Itoa(pin),
		strconv.FormatInt(durationMS, 10),
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	g.logger.Debug("activating pump",
		"pin", pin,
		"duration_ms", durationMS,
	)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		g.logger.Error("pump activation failed",
			"pin", pin,
			"duration_ms", durationMS,
			"elapsed_ms", elapsed.Milliseconds(),
			"stderr", stderr.String(),
			"error", err,
		)
		if runCtx.Err() != nil {
			return fmt.Errorf("%w: script overran by more than %v on pin %d", ErrActuatorFault, g.grace, pin)
		}
		return fmt.Errorf("%w: pin %d: %w", ErrActuatorFault, pin, err)
	}

	g.logger.Debug("pump de-energised",
		"pin", pin,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return nil
}
