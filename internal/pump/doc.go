// Package pump manages the bindings between GPIO pins and ingredients.
//
// A Binding records which pin drives which pump, what the pump
// dispenses, and its calibrated flow rate. The Registry caches
// bindings over a SQLite repository and resolves ingredients to
// enabled pumps during preparation planning.
//
// Calibration: run the pump for a fixed duration, measure the output,
// and Calibrate() stores volume/seconds as the flow rate. Metered
// pours divide the wanted volume by this rate to get an activation
// duration.
package pump
