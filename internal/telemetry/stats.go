package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period          string            `json:"period"`
	EventCounts     map[EventType]int `json:"event_counts"`
	ManualMines     int               `json:"manual_mines"`
	AutomationFires int               `json:"automation_fires"`
	TotalYield      float64           `json:"total_yield"`
	Crits           int               `json:"crits"`
	CritRate        float64           `json:"crit_rate"`
	UpgradesByID    map[string]int    `json:"upgrades_by_id"`
	RelicsDropped   int               `json:"relics_dropped"`
	BreachesCleared int               `json:"breaches_cleared"`
	BossesDefeated  int               `json:"bosses_defeated"`
	BossesEscaped   int               `json:"bosses_escaped"`
	Prestiges       int               `json:"prestiges"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:       since.Format("2006-01-02"),
		EventCounts:  make(map[EventType]int),
		UpgradesByID: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventManualMine, EventAutomationFire:
			if event.Type == EventManualMine {
				stats.ManualMines++
			} else {
				stats.AutomationFires++
			}
			if yield, ok := metadata["yield"].(float64); ok {
				stats.TotalYield += yield
			}
			if crit, ok := metadata["crit"].(bool); ok && crit {
				stats.Crits++
			}
		case EventUpgradePurchased:
			if id, ok := metadata["upgrade_id"].(string); ok {
				stats.UpgradesByID[id]++
			}
		case EventRelicDropped:
			stats.RelicsDropped++
		case EventBreachCleared:
			stats.BreachesCleared++
		case EventBossDefeated:
			stats.BossesDefeated++
		case EventBossEscaped:
			stats.BossesEscaped++
		case EventPrestige:
			stats.Prestiges++
		}
	}

	if hits := stats.ManualMines + stats.AutomationFires; hits > 0 {
		stats.CritRate = float64(stats.Crits) / float64(hits)
	}

	return stats, nil
}
