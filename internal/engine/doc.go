// Package engine orchestrates drink preparation.
//
// The Engine takes a recipe, scales it to the requested volume, checks
// stock against the inventory ledger, resolves every automatic line to
// a calibrated pump, and dispenses: the primary batch concurrently,
// then a settle pause, then delayed (layering) lines one at a time.
// Every started pour is debited from the ledger exactly once, whether
// the activation succeeded or faulted.
//
// One preparation runs at a time; concurrent attempts fail fast with
// ErrBusy rather than queue. Cancellation is only honoured between
// batches, never mid-pour: an energised pump always runs out.
//
// State transitions (validating, dispensing, settling, completed,
// failed) are persisted to the preparations table and published to
// MQTT and the WebSocket hub when those are wired. All side channels
// are optional; a broker outage never fails a drink.
package engine
