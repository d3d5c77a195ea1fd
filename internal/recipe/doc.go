// Package recipe defines drink recipes and scales them to target volumes.
//
// A recipe is a list of lines, each either automatic (pumped) or
// manual (added by hand, with an instruction). Scaling multiplies each
// line by target/nominal-total and rounds half-up per line with no
// renormalisation, so a scaled plan's total may drift from the target
// by up to a millilitre per line. Consumers that need the true
// dispensed amount use the plan's line volumes, not the target.
package recipe
