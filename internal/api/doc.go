// Package api implements the HTTP REST API and WebSocket server for
// Cocktailbot Core.
//
// This package provides:
//   - REST endpoints for recipes, pumps, inventory and preparations
//   - Preparation control (prepare, shot, availability check)
//   - WebSocket hub for real-time preparation state broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The API server sits between user interfaces (the touch panel, a
// phone on the party WLAN) and the preparation engine + stores.
// Commands flow from handlers into the engine; state transitions flow
// back through the WebSocket hub and, when configured, MQTT.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
