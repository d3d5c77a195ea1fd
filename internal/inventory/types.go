package inventory

import "time"

// Level is the reservoir accounting record for one ingredient.
//
// CurrentML tracks what the machine believes remains in the bottle.
// It is debited after every pour and never drops below zero: physical
// reality wins over arithmetic when a bottle runs dry mid-pour.
type Level struct {
	// IngredientID identifies the ingredient this level belongs to.
	IngredientID string `json:"ingredient_id"`

	// CurrentML is the remaining volume in millilitres.
	CurrentML float64 `json:"current_ml"`

	// CapacityML is the bottle/reservoir capacity in millilitres.
	CapacityML float64 `json:"capacity_ml"`

	// LastRefill is when the reservoir was last refilled to capacity.
	// Nil if it has never been refilled.
	LastRefill *time.Time `json:"last_refill,omitempty"`

	// UpdatedAt is when this record last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Copy returns an independent copy of the level.
func (l *Level) Copy() *Level {
	c := *l
	if l.LastRefill != nil {
		t := *l.LastRefill
		c.LastRefill = &t
	}
	return &c
}
