package actuator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSimulator_RecordsTimeline(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeScale(0.001)

	if err := sim.Activate(context.Background(), 17, 2*time.Second); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	timeline := sim.Timeline()
	if len(timeline) != 1 {
		t.Fatalf("len(Timeline()) = %d, want 1", len(timeline))
	}

	a := timeline[0]
	if a.Pin != 17 {
		t.Errorf("Pin = %d, want 17", a.Pin)
	}
	if a.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", a.Duration)
	}
	if a.End.Before(a.Start) {
		t.Error("End before Start")
	}
}

func TestSimulator_FaultStillDeEnergises(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeScale(0.001)
	sim.InjectFault(27)

	err := sim.Activate(context.Background(), 27, time.Second)
	if !errors.Is(err, ErrActuatorFault) {
		t.Fatalf("Activate() error = %v, want ErrActuatorFault", err)
	}

	// The de-energise is recorded even on fault
	timeline := sim.Timeline()
	if len(timeline) != 1 {
		t.Fatalf("len(Timeline()) = %d, want 1 (fault must still record de-energise)", len(timeline))
	}
	if timeline[0].End.IsZero() {
		t.Error("End not recorded on faulted activation")
	}
}

func TestSimulator_InvalidInputs(t *testing.T) {
	sim := NewSimulator()

	if err := sim.Activate(context.Background(), -1, time.Second); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Activate(pin=-1) error = %v, want ErrInvalidPin", err)
	}
	if err := sim.Activate(context.Background(), 17, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("Activate(duration=0) error = %v, want ErrInvalidDuration", err)
	}
}

func TestSimulator_ClearFault(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeScale(0.001)
	sim.InjectFault(17)
	sim.ClearFault(17)

	if err := sim.Activate(context.Background(), 17, time.Second); err != nil {
		t.Errorf("Activate() after ClearFault error = %v", err)
	}
}

func TestGPIO_InvalidInputs(t *testing.T) {
	g := NewGPIO(GPIOConfig{ScriptPath: "scripts/pump_control.py"})

	if err := g.Activate(context.Background(), -1, time.Second); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Activate(pin=-1) error = %v, want ErrInvalidPin", err)
	}
	if err := g.Activate(context.Background(), 17, -time.Second); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("Activate(duration<0) error = %v, want ErrInvalidDuration", err)
	}
}

func TestGPIO_MissingScriptIsFault(t *testing.T) {
	g := NewGPIO(GPIOConfig{
		Interpreter: "python3",
		ScriptPath:  "/nonexistent/pump_control.py",
	})

	err := g.Activate(context.Background(), 17, 10*time.Millisecond)
	if !errors.Is(err, ErrActuatorFault) {
		t.Errorf("Activate() error = %v, want ErrActuatorFault", err)
	}
}
