// Package influxdb provides the statistics sink for Cocktailbot Core.
//
// Completed and failed preparations, plus per-ingredient pour volumes,
// are written as time-series points. Writes are non-blocking and
// batched; a sink outage never blocks or fails a preparation.
//
// The sink is optional and controlled by the influxdb.enabled config
// flag. When disabled, Connect returns ErrDisabled and callers run
// without statistics.
package influxdb
