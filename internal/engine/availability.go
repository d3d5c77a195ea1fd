package engine

import (
	"context"
	"sort"

	"github.com/SaschaWenning/cocktailbot-core/internal/recipe"
)

// lowStockFactor marks an ingredient as low when the remaining volume
// would not cover a second drink of the same size.
const lowStockFactor = 2

// checkPlan runs the stock check for a scaled dispense plan.
//
// Only automatic lines participate; manual lines are the bartender's
// problem. Requirements are aggregated per ingredient, so a recipe
// using the same ingredient twice is checked against the combined
// volume. Zero-volume lines are skipped.
func (e *Engine) checkPlan(ctx context.Context, plan *recipe.DispensePlan) (*AvailabilityResult, error) {
	required := make(map[string]int)
	var order []string
	for _, line := range plan.Lines {
		if line.Mode != recipe.ModeAutomatic || line.VolumeML <= 0 {
			continue
		}
		if _, seen := required[line.IngredientID]; !seen {
			order = append(order, line.IngredientID)
		}
		required[line.IngredientID] += line.VolumeML
	}

	result := &AvailabilityResult{OK: true}

	for _, ingredientID := range order {
		need := required[ingredientID]

		if _, err := e.pumps.ResolveByIngredient(ctx, ingredientID); err != nil {
			result.OK = false
			result.Missing = append(result.Missing, MissingIngredient{
				IngredientID: ingredientID,
				RequiredML:   need,
				Reason:       ReasonNoPump,
			})
			continue
		}

		level, err := e.ledger.Get(ctx, ingredientID)
		if err != nil {
			return nil, err
		}

		switch {
		case level.CurrentML < float64(need):
			result.OK = false
			result.Missing = append(result.Missing, MissingIngredient{
				IngredientID: ingredientID,
				RequiredML:   need,
				AvailableML:  level.CurrentML,
				Reason:       ReasonInsufficient,
			})
		case level.CurrentML < float64(need*lowStockFactor):
			result.Low = append(result.Low, ingredientID)
		}
	}

	sort.Strings(result.Low)
	return result, nil
}

// CheckAvailability reports whether a recipe can be prepared at the
// target volume, without touching any hardware or stock.
//
// Parameters:
//   - ctx: Context for repository reads
//   - recipeID: Recipe to check
//   - targetML: Desired drink volume
//
// Returns:
//   - *AvailabilityResult: OK plus missing/low detail
//   - error: recipe.ErrNotFound, recipe.ErrInvalidVolume,
//     recipe.ErrInvalidRecipe, or a repository failure
func (e *Engine) CheckAvailability(ctx context.Context, recipeID string, targetML int) (*AvailabilityResult, error) {
	rec, err := e.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	plan, err := recipe.Scale(rec, targetML)
	if err != nil {
		return nil, err
	}

	return e.checkPlan(ctx, plan)
}
