package ingredient

import "time"

// Class categorises an ingredient by how it is bottled.
// The class determines the default reservoir capacity when an
// inventory level is created for the first time.
type Class string

const (
	// ClassSpirit covers alcoholic ingredients (typically 700 ml bottles).
	ClassSpirit Class = "spirit"

	// ClassMixer covers non-alcoholic ingredients (typically 1 l bottles).
	ClassMixer Class = "mixer"
)

// Default reservoir capacities in millilitres, by class.
const (
	DefaultSpiritCapacityML = 700
	DefaultMixerCapacityML  = 1000
)

// Ingredient is reference data for a pourable liquid.
type Ingredient struct {
	// ID is the unique identifier (e.g., "vodka", "orange-juice").
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Alcoholic indicates whether the ingredient contains alcohol.
	Alcoholic bool `json:"alcoholic"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Class returns the bottle class for this ingredient.
func (i *Ingredient) Class() Class {
	if i.Alcoholic {
		return ClassSpirit
	}
	return ClassMixer
}

// DefaultCapacity returns the default reservoir capacity in millilitres
// for the given class.
func DefaultCapacity(class Class) float64 {
	if class == ClassSpirit {
		return DefaultSpiritCapacityML
	}
	return DefaultMixerCapacityML
}
