package pump

import "time"

// Binding maps a GPIO pin to the ingredient its pump dispenses.
//
// FlowRateMLPerSec is established by calibration: run the pump for a
// known duration, measure what came out, divide. A binding with a
// zero or negative flow rate has never been calibrated and cannot be
// used for metered pours.
type Binding struct {
	// ID is the unique identifier (e.g., "pump-1").
	ID string `json:"id"`

	// Pin is the GPIO pin (BCM numbering) driving the pump relay.
	Pin int `json:"pin"`

	// IngredientID is the ingredient this pump dispenses.
	IngredientID string `json:"ingredient_id"`

	// FlowRateMLPerSec is the calibrated flow rate in ml/second.
	FlowRateMLPerSec float64 `json:"flow_rate_ml_per_sec"`

	// Enabled indicates whether the pump participates in preparations.
	// Disabled pumps are skipped by ingredient resolution.
	Enabled bool `json:"enabled"`

	// VentDurationMS is how long a vent run activates the pump, in
	// milliseconds. Used to purge air from the tubing.
	VentDurationMS int `json:"vent_duration_ms"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Calibrated reports whether the pump has a usable flow rate.
func (b *Binding) Calibrated() bool {
	return b.FlowRateMLPerSec > 0
}

// Copy returns an independent copy of the binding.
func (b *Binding) Copy() *Binding {
	c := *b
	return &c
}
