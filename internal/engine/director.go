package engine

import (
	"context"
	"time"

	"cgtminer/internal/boss"
	"cgtminer/internal/breach"
	"cgtminer/internal/config"
	"cgtminer/internal/ledger"
	"cgtminer/internal/telemetry"
)

// The director is the background half of the engine: periodic event
// rolls, the per-second upkeep tick and hotspot rotation. The scheduler
// drives these; tests call them directly with a fake clock.

// CheckBreach rolls for a breach opening. At most one exclusive event
// runs at a time.
func (e *Engine) CheckBreach(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.live.Active() || e.rng.Float64() >= e.cfg.Events.Breach.Chance {
		return false
	}

	now := e.clock.Now()
	durationMult := 1.0
	for _, id := range e.st.Relics {
		if def, ok := e.cat.Relic(id); ok && def.Effect == config.RelicBreachDurationMul {
			durationMult = def.Value
		}
	}
	sess := breach.New(e.cfg.Events.Breach, durationMult, e.rng, now)
	e.live = LiveEvent{Kind: LiveBreach, Breach: sess}
	e.log.Printf("breach opened, closes %s", sess.Deadline().Format(time.RFC3339))
	e.record(telemetry.EventBreachStarted, telemetry.EventMetadata{
		"deadline": sess.Deadline(),
	})
	e.save(ctx)
	return true
}

// CheckBoss rolls for a guardian spawn.
func (e *Engine) CheckBoss(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.live.Active() || e.rng.Float64() >= e.cfg.Events.Boss.Chance {
		return false
	}

	now := e.clock.Now()
	name := "Guardian"
	if n := len(e.cfg.Bosses); n > 0 {
		name = e.cfg.Bosses[e.rng.Intn(n)].Name
	}
	enc := boss.New(e.cfg.Events.Boss, name, e.st.TotalMined, now)
	e.live = LiveEvent{Kind: LiveBoss, Boss: enc}
	e.log.Printf("guardian %q spawned with %.0f HP", enc.Name, enc.MaxHP)
	e.record(telemetry.EventBossSpawned, telemetry.EventMetadata{
		"boss":   enc.Name,
		"max_hp": enc.MaxHP,
	})
	e.save(ctx)
	return true
}

// RefreshHotspots rerolls the high-yield sectors.
func (e *Engine) RefreshHotspots(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rollHotspots()
	e.save(ctx)
}

// rollHotspots picks distinct hotspot sectors on the grid. Callers
// hold e.mu (or run before the engine is shared).
func (e *Engine) rollHotspots() {
	size := e.cfg.Sectors.GridSize
	count := e.cfg.Sectors.HotspotCount
	if count > size*size {
		count = size * size
	}
	seen := make(map[ledger.Coord]bool, count)
	spots := make([]ledger.Coord, 0, count)
	for len(spots) < count {
		c := ledger.Coord{X: e.rng.Intn(size), Y: e.rng.Intn(size)}
		if seen[c] {
			continue
		}
		seen[c] = true
		spots = append(spots, c)
	}
	e.st.Hotspots = spots
}

// Tick is the once-per-second upkeep pass: booster expiry, breach and
// boss timeouts, ambient guardian damage and satellite charging.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	e.st.PruneBoosters(now)

	switch e.live.Kind {
	case LiveBreach:
		if e.live.Breach.Expired(now) || e.live.Breach.Terminated() {
			e.endBreachLocked(ctx, "expired")
		}
	case LiveBoss:
		enc := e.live.Boss
		if enc.Expired(now) {
			e.log.Printf("guardian %q escaped with %.0f HP left", enc.Name, enc.HP())
			e.record(telemetry.EventBossEscaped, telemetry.EventMetadata{
				"boss":    enc.Name,
				"hp_left": enc.HP(),
			})
			e.live.Clear()
			e.save(ctx)
			return
		}
		enc.ChargeTick(time.Second)
		if enc.AmbientTick() {
			e.defeatBossLocked(now)
		}
		e.save(ctx)
	}
}
