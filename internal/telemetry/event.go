package telemetry

import "time"

type EventType string

const (
	EventManualMine       EventType = "manual_mine"
	EventAutomationFire   EventType = "automation_fire"
	EventUpgradePurchased EventType = "upgrade_purchased"
	EventBoosterPurchased EventType = "booster_purchased"
	EventPetPurchased     EventType = "pet_purchased"
	EventRelicDropped     EventType = "relic_dropped"
	EventPrestige         EventType = "prestige"
	EventSectorRelocated  EventType = "sector_relocated"
	EventBreachStarted    EventType = "breach_started"
	EventBreachCleared    EventType = "breach_level_cleared"
	EventBreachEnded      EventType = "breach_ended"
	EventBossSpawned      EventType = "boss_spawned"
	EventBossDefeated     EventType = "boss_defeated"
	EventBossEscaped      EventType = "boss_escaped"
	EventSatelliteStrike  EventType = "satellite_strike"
	EventOverdriveStarted EventType = "overdrive_started"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
