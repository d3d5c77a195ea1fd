package recipe

import "math"

// PlanLine is one scaled recipe line, ready for dispensing or manual
// handling.
type PlanLine struct {
	// IngredientID identifies the ingredient.
	IngredientID string `json:"ingredient_id"`

	// Mode is carried over from the recipe line.
	Mode Mode `json:"mode"`

	// VolumeML is the scaled volume in millilitres.
	VolumeML int `json:"volume_ml"`

	// Instruction is carried over for manual lines.
	Instruction string `json:"instruction,omitempty"`

	// Delayed is carried over from the recipe line.
	Delayed bool `json:"delayed,omitempty"`
}

// DispensePlan is a recipe scaled to a target volume.
type DispensePlan struct {
	RecipeID string     `json:"recipe_id"`
	TargetML int        `json:"target_ml"`
	Lines    []PlanLine `json:"lines"`
}

// TotalML sums the scaled volumes of all lines.
// Because each line rounds independently, this may drift from TargetML
// by up to one millilitre per line.
func (p *DispensePlan) TotalML() int {
	total := 0
	for _, l := range p.Lines {
		total += l.VolumeML
	}
	return total
}

// Scale produces a dispense plan for a recipe at a target volume.
//
// Each line's volume is multiplied by targetML divided by the recipe's
// nominal total and rounded half-up to whole millilitres. Lines round
// independently; there is no renormalisation pass, so the plan total
// may differ slightly from the target. Zero-volume lines survive
// scaling (they round to their own scaled value, which may be zero).
//
// Parameters:
//   - r: Recipe to scale
//   - targetML: Desired drink volume in millilitres
//
// Returns:
//   - *DispensePlan: Scaled plan with every recipe line
//   - error: ErrInvalidVolume if targetML <= 0,
//     ErrInvalidRecipe if the recipe's nominal total <= 0
func Scale(r *Recipe, targetML int) (*DispensePlan, error) {
	if targetML <= 0 {
		return nil, ErrInvalidVolume
	}

	total := r.NominalTotalML()
	if total <= 0 {
		return nil, ErrInvalidRecipe
	}

	factor := float64(targetML) / float64(total)

	plan := &DispensePlan{
		RecipeID: r.ID,
		TargetML: targetML,
		Lines:    make([]PlanLine, 0, len(r.Lines)),
	}

	for _, line := range r.Lines {
		scaled := int(math.Round(float64(line.VolumeML) * factor))
		plan.Lines = append(plan.Lines, PlanLine{
			IngredientID: line.IngredientID,
			Mode:         line.Mode,
			VolumeML:     scaled,
			Instruction:  line.Instruction,
			Delayed:      line.Delayed,
		})
	}

	return plan, nil
}
