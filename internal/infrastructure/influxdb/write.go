package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePreparation records a completed or failed preparation.
//
// This is the primary statistics hook: one point per preparation with
// the recipe, outcome, dispensed volume and wall-clock duration. The
// write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - recipeID: Recipe that was prepared ("shot" for single-ingredient pours)
//   - state: Final state ("completed" or "failed")
//   - targetML: Requested drink volume in millilitres
//   - pouredML: Total volume actually dispensed in millilitres
//   - elapsedMS: Wall-clock preparation time in milliseconds
func (c *Client) WritePreparation(recipeID, state string, targetML int, pouredML float64, elapsedMS int64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"preparations",
		map[string]string{
			"recipe_id": recipeID,
			"state":     state,
		},
		map[string]interface{}{
			"target_ml":  targetML,
			"poured_ml":  pouredML,
			"elapsed_ms": elapsedMS,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePourVolume records the volume dispensed for one ingredient.
//
// Used for per-ingredient consumption statistics.
//
// Parameters:
//   - ingredientID: Ingredient identifier
//   - volumeML: Volume dispensed in millilitres
func (c *Client) WritePourVolume(ingredientID string, volumeML float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"pours",
		map[string]string{
			"ingredient_id": ingredientID,
		},
		map[string]interface{}{
			"volume_ml": volumeML,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
