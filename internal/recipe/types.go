package recipe

import "time"

// Mode distinguishes how a recipe line is fulfilled.
type Mode string

const (
	// ModeAutomatic lines are dispensed by a pump.
	ModeAutomatic Mode = "automatic"

	// ModeManual lines are added by hand (garnish, shaken components);
	// the preparation result lists them as instructions for the bartender.
	ModeManual Mode = "manual"
)

// Line is one ingredient entry in a recipe.
//
// The mode is fixed when the recipe is defined: an automatic line is
// always pumped, a manual line is never pumped. There is no runtime
// fallback between the two.
type Line struct {
	// IngredientID identifies the ingredient.
	IngredientID string `json:"ingredient_id"`

	// Mode says whether a pump dispenses this line or a human does.
	Mode Mode `json:"mode"`

	// VolumeML is the nominal volume at the recipe's reference size.
	VolumeML int `json:"volume_ml"`

	// Instruction is shown for manual lines (e.g., "add crushed ice").
	Instruction string `json:"instruction,omitempty"`

	// Delayed marks layering ingredients poured after the settle delay
	// instead of in the concurrent primary batch.
	Delayed bool `json:"delayed,omitempty"`
}

// Recipe is a drink definition.
type Recipe struct {
	// ID is the unique identifier (e.g., "tequila-sunrise").
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Alcoholic indicates whether any line contains alcohol.
	Alcoholic bool `json:"alcoholic"`

	// Lines are the recipe's ingredient entries.
	Lines []Line `json:"lines"`

	// Sizes are the drink volumes (ml) offered by the UI.
	Sizes []int `json:"sizes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NominalTotalML sums the nominal volumes of all lines.
// This is the reference size that scaling works against.
func (r *Recipe) NominalTotalML() int {
	total := 0
	for _, l := range r.Lines {
		total += l.VolumeML
	}
	return total
}

// AutomaticLines returns the lines dispensed by pumps.
func (r *Recipe) AutomaticLines() []Line {
	var out []Line
	for _, l := range r.Lines {
		if l.Mode == ModeAutomatic {
			out = append(out, l)
		}
	}
	return out
}

// Copy returns an independent copy of the recipe.
func (r *Recipe) Copy() *Recipe {
	c := *r
	c.Lines = make([]Line, len(r.Lines))
	copy(c.Lines, r.Lines)
	c.Sizes = make([]int, len(r.Sizes))
	copy(c.Sizes, r.Sizes)
	return &c
}
