package engine

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle phase of a preparation.
type State string

const (
	// StateIdle means no preparation is active.
	StateIdle State = "idle"

	// StateValidating covers recipe loading, scaling, pump resolution
	// and the stock check. Nothing has been poured yet.
	StateValidating State = "validating"

	// StateDispensing means pumps are running the primary batch.
	StateDispensing State = "dispensing"

	// StateSettling is the pause before delayed (layering) ingredients.
	StateSettling State = "settling"

	// StateCompleted is the successful terminal state.
	StateCompleted State = "completed"

	// StateFailed is the unsuccessful terminal state.
	StateFailed State = "failed"
)

// MissingIngredient describes why an ingredient blocks a preparation.
type MissingIngredient struct {
	// IngredientID identifies the ingredient.
	IngredientID string `json:"ingredient_id"`

	// RequiredML is the scaled volume the recipe needs.
	RequiredML int `json:"required_ml"`

	// AvailableML is what the ledger reports as remaining.
	AvailableML float64 `json:"available_ml"`

	// Reason is "no_pump" when no enabled pump dispenses the
	// ingredient, "insufficient" when stock does not cover the need.
	Reason string `json:"reason"`
}

// Reasons for MissingIngredient.
const (
	ReasonNoPump       = "no_pump"
	ReasonInsufficient = "insufficient"
)

// AvailabilityResult is the outcome of a stock check.
//
// OK is true only when every automatic line can be poured in full.
// Low is advisory: ingredients that cover this drink but not another
// one of the same size.
type AvailabilityResult struct {
	OK      bool                `json:"ok"`
	Missing []MissingIngredient `json:"missing,omitempty"`
	Low     []string            `json:"low,omitempty"`
}

// ManualStep is a recipe line the bartender handles by hand.
type ManualStep struct {
	IngredientID string `json:"ingredient_id"`
	VolumeML     int    `json:"volume_ml"`
	Instruction  string `json:"instruction,omitempty"`
}

// PumpRun records one pump activation within a preparation.
type PumpRun struct {
	PumpID       string `json:"pump_id"`
	Pin          int    `json:"pin"`
	IngredientID string `json:"ingredient_id"`
	VolumeML     int    `json:"volume_ml"`
	DurationMS   int64  `json:"duration_ms"`
	Delayed      bool   `json:"delayed,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Result is the outcome of a preparation.
type Result struct {
	// PreparationID is the unique execution identifier.
	PreparationID string `json:"preparation_id"`

	// RecipeID is the recipe that was prepared ("shot:<ingredient>"
	// for single-ingredient pours).
	RecipeID string `json:"recipe_id"`

	// TargetML is the requested drink volume.
	TargetML int `json:"target_ml"`

	// Success is true only for completed preparations.
	Success bool `json:"success"`

	// State is the terminal state.
	State State `json:"state"`

	// Missing lists blocking ingredients when validation failed.
	Missing []MissingIngredient `json:"missing,omitempty"`

	// Manual lists the hand-added steps for the bartender.
	Manual []ManualStep `json:"manual,omitempty"`

	// PumpRuns lists every pump activation, including failed ones.
	PumpRuns []PumpRun `json:"pump_runs,omitempty"`

	// ElapsedMS is the wall-clock preparation time.
	ElapsedMS int64 `json:"elapsed_ms"`
}

// PouredML sums the volume of all successful pump runs.
func (r *Result) PouredML() float64 {
	var total float64
	for _, run := range r.PumpRuns {
		if run.Error == "" {
			total += float64(run.VolumeML)
		}
	}
	return total
}

// Record is the persisted form of a preparation.
type Record struct {
	ID         string     `json:"id"`
	RecipeID   string     `json:"recipe_id"`
	TargetML   int        `json:"target_ml"`
	State      State      `json:"state"`
	Success    bool       `json:"success"`
	Detail     string     `json:"detail,omitempty"` // JSON-encoded Result
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// GenerateID creates a unique preparation identifier.
func GenerateID() string {
	return uuid.New().String()
}
