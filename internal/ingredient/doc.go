// Package ingredient holds reference data for pourable liquids.
//
// Ingredients are classed as spirits (alcoholic) or mixers. The class
// drives the default reservoir capacity used when the inventory ledger
// first touches an ingredient: 700 ml for spirits, 1000 ml for mixers.
package ingredient
