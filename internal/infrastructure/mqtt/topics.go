package mqtt

import "fmt"

// Topic prefixes for the Cocktailbot MQTT hierarchy.
//
// Scheme: cocktailbot/{area}/{entity}/{id}/{facet}
const (
	// TopicPrefixCore is the base for all core topics.
	TopicPrefixCore = "cocktailbot/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "cocktailbot/system"
)

// Topics provides builders for Cocktailbot MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.PreparationState("prep-abc123")
//	// Returns: "cocktailbot/core/preparation/prep-abc123/state"
type Topics struct{}

// PreparationState returns the topic for preparation state transitions.
//
// A lighting or notification controller subscribes here to follow a
// drink through validating, dispensing, settling, completed or failed.
//
// Example: cocktailbot/core/preparation/prep-abc123/state
func (Topics) PreparationState(preparationID string) string {
	return fmt.Sprintf("%s/preparation/%s/state", TopicPrefixCore, preparationID)
}

// AllPreparationStates returns a wildcard pattern matching every
// preparation's state topic.
func (Topics) AllPreparationStates() string {
	return TopicPrefixCore + "/preparation/+/state"
}

// PumpEvent returns the topic for pump lifecycle events
// (activated, calibrated, vented, cleaned).
//
// Example: cocktailbot/core/pump/pump-3/activated
func (Topics) PumpEvent(pumpID, event string) string {
	return fmt.Sprintf("%s/pump/%s/%s", TopicPrefixCore, pumpID, event)
}

// InventoryLevel returns the topic for inventory level updates.
//
// Example: cocktailbot/core/inventory/vodka/level
func (Topics) InventoryLevel(ingredientID string) string {
	return fmt.Sprintf("%s/inventory/%s/level", TopicPrefixCore, ingredientID)
}

// SystemStatus returns the topic for machine online/offline status.
// Used for both the LWT and graceful shutdown messages.
//
// Example: cocktailbot/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
