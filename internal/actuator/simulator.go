package actuator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Activation is one recorded simulator run.
type Activation struct {
	Pin      int
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Simulator is an in-process Driver for development machines and tests.
//
// It sleeps for the commanded duration (optionally compressed) and
// records an energise/de-energise timeline. Faults can be injected per
// pin; a faulted activation still records its de-energise, mirroring
// the hardware script's finally-block discipline.
//
// All methods are safe for concurrent use.
type Simulator struct {
	mu        sync.Mutex
	timeline  []Activation
	faultPins map[int]error
	timeScale float64
	logger    Logger
}

// NewSimulator creates a simulator that sleeps activations in real time.
func NewSimulator() *Simulator {
	return &Simulator{
		faultPins: make(map[int]error),
		timeScale: 1.0,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the simulator.
func (s *Simulator) SetLogger(logger Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// SetTimeScale compresses simulated time. A scale of 0.01 makes a
// 2000 ms activation sleep 20 ms. Values <= 0 are ignored.
func (s *Simulator) SetTimeScale(scale float64) {
	if scale <= 0 {
		return
	}
	s.mu.Lock()
	s.timeScale = scale
	s.mu.Unlock()
}

// InjectFault makes future activations on a pin fail with ErrActuatorFault.
func (s *Simulator) InjectFault(pin int) {
	s.mu.Lock()
	s.faultPins[pin] = fmt.Errorf("%w: injected fault on pin %d", ErrActuatorFault, pin)
	s.mu.Unlock()
}

// ClearFault removes an injected fault from a pin.
func (s *Simulator) ClearFault(pin int) {
	s.mu.Lock()
	delete(s.faultPins, pin)
	s.mu.Unlock()
}

// Activate simulates running the pump on the given pin.
//
// The recorded timeline always includes the de-energise (End), even
// when a fault is injected or the caller's context is already
// cancelled: an energised pump always runs out.
func (s *Simulator) Activate(ctx context.Context, pin int, duration time.Duration) error {
	if pin < 0 {
		return ErrInvalidPin
	}
	if duration <= 0 {
		return ErrInvalidDuration
	}

	s.mu.Lock()
	fault := s.faultPins[pin]
	scale := s.timeScale
	s.mu.Unlock()

	start := time.Now()
	time.Sleep(time.Duration(float64(duration) * scale))
	end := time.Now()

	s.mu.Lock()
	s.timeline = append(s.timeline, Activation{
		Pin:      pin,
		Start:    start,
		End:      end,
		Duration: duration,
	})
	s.mu.Unlock()

	if fault != nil {
		return fault
	}
	return nil
}

// Timeline returns a copy of all recorded activations in order.
func (s *Simulator) Timeline() []Activation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Activation, len(s.timeline))
	copy(out, s.timeline)
	return out
}

// Reset clears the recorded timeline and injected faults.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.timeline = nil
	s.faultPins = make(map[int]error)
	s.mu.Unlock()
}
