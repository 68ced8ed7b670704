package engine

import (
	"context"
	"time"
)

// Run drives the simulation in real time: the per-second upkeep tick,
// the breach and boss spawn rolls, hotspot rotation and the drone
// cycle. It blocks until ctx is cancelled. All timing here is wall
// clock; the engine's own clock only stamps the results, which keeps
// the unit tests free to drive Tick and the checks directly.
func (e *Engine) Run(ctx context.Context) error {
	upkeep := time.NewTicker(time.Second)
	defer upkeep.Stop()
	breachRoll := time.NewTicker(e.cfg.Events.Breach.CheckInterval())
	defer breachRoll.Stop()
	bossRoll := time.NewTicker(e.cfg.Events.Boss.CheckInterval())
	defer bossRoll.Stop()
	hotspots := time.NewTicker(e.cfg.Sectors.RefreshInterval())
	defer hotspots.Stop()

	drones := time.NewTimer(e.AutomationInterval())
	defer drones.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-upkeep.C:
			e.Tick(ctx)

		case <-breachRoll.C:
			e.CheckBreach(ctx)

		case <-bossRoll.C:
			e.CheckBoss(ctx)

		case <-hotspots.C:
			e.RefreshHotspots(ctx)

		case <-drones.C:
			res, err := e.AutomationFire(ctx)
			if err != nil {
				e.log.Printf("automation: %v", err)
				drones.Reset(e.AutomationInterval())
				continue
			}
			drones.Reset(res.NextFire)

		case <-e.recompute:
			// An upgrade, booster or relic moved the cycle length;
			// restart the drone timer at the new pace.
			if !drones.Stop() {
				select {
				case <-drones.C:
				default:
				}
			}
			drones.Reset(e.AutomationInterval())
		}
	}
}
