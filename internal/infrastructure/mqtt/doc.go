// Package mqtt provides the MQTT side-channel for Cocktailbot Core.
//
// The engine publishes preparation state transitions, pump events and
// inventory updates here so that external collaborators (a lighting
// controller, a notification service) can react without polling the
// REST API. Publishing is fire-and-forget: a broker outage never
// blocks or fails a preparation.
//
// # Topic hierarchy
//
//	cocktailbot/core/preparation/{id}/state   state transitions
//	cocktailbot/core/pump/{id}/{event}        pump lifecycle events
//	cocktailbot/core/inventory/{id}/level     level updates
//	cocktailbot/system/status                 online/offline (retained, LWT)
//
// # Connection management
//
// The client auto-reconnects with exponential backoff and restores all
// subscriptions on reconnect. A Last Will and Testament marks the
// machine offline if the process dies without a graceful shutdown.
package mqtt
