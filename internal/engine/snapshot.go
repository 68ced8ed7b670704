package engine

import (
	"time"

	"cgtminer/internal/breach"
	"cgtminer/internal/ledger"
)

// Snapshot is the full client-facing view of the simulation at one
// instant. The server serializes it as-is for the state endpoint and
// the live feed.
type Snapshot struct {
	CGT           float64              `json:"cgt"`
	TotalMined    float64              `json:"total_cgt_mined"`
	PrestigeSeeds int                  `json:"prestige_seeds"`
	PendingSeeds  int                  `json:"pending_prestige_seeds"`
	Multipliers   ledger.Multipliers   `json:"multipliers"`
	ManualPower   float64              `json:"manual_power"`
	CritChance    float64              `json:"crit_chance"`
	CritMult      float64              `json:"crit_mult"`
	DronePower    float64              `json:"drone_power"`
	DroneInterval int64                `json:"drone_interval_ms"`
	Upgrades      map[string]int       `json:"upgrades"`
	DroneUpgrades map[string]int       `json:"drone_upgrades"`
	Relics        []string             `json:"relics"`
	Boosters      map[string]time.Time `json:"boosters"`
	Sector        ledger.Coord         `json:"current_sector"`
	Hotspots      []ledger.Coord       `json:"hotspots"`
	AtHotspot     bool                 `json:"at_hotspot"`
	OwnedPets     []string             `json:"owned_pets"`
	ActivePetID   string               `json:"active_pet_id,omitempty"`
	Overdrive     *OverdriveView       `json:"overdrive,omitempty"`
	Breach        *BreachView          `json:"breach,omitempty"`
	Boss          *BossView            `json:"boss,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

type OverdriveView struct {
	Until time.Time `json:"until"`
}

type BreachView struct {
	Level       int           `json:"level"`
	Progress    int           `json:"progress"`
	SequenceLen int           `json:"sequence_len"`
	Scanning    bool          `json:"scanning"`
	Sequence    []breach.Cell `json:"sequence,omitempty"`
	Deadline    time.Time     `json:"deadline"`
}

type BossView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	HP       float64   `json:"hp"`
	MaxHP    float64   `json:"max_hp"`
	Charge   float64   `json:"charge"`
	Deadline time.Time `json:"deadline"`
}

// Snapshot captures the current simulation view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.clock.Now())
}

func (e *Engine) snapshotLocked(now time.Time) Snapshot {
	st := e.st.Clone()
	snap := Snapshot{
		CGT:           st.CGT,
		TotalMined:    st.TotalMined,
		PrestigeSeeds: st.PrestigeSeeds,
		PendingSeeds:  st.PendingSeeds(e.cat.PrestigeThreshold()),
		Multipliers:   st.Multipliers(e.cat, now),
		ManualPower:   e.manualPower(now),
		CritChance:    e.manualCritChance(),
		CritMult:      e.critMult(),
		DronePower:    e.automationPower(),
		DroneInterval: e.automationInterval(now).Milliseconds(),
		Upgrades:      st.Upgrades,
		DroneUpgrades: st.DroneUpgrades,
		Relics:        st.Relics,
		Boosters:      st.Boosters,
		Sector:        st.Sector,
		Hotspots:      st.Hotspots,
		AtHotspot:     st.AtHotspot(),
		OwnedPets:     st.OwnedPets,
		ActivePetID:   st.ActivePetID,
		Timestamp:     now,
	}
	if e.overdriveActive(now) {
		snap.Overdrive = &OverdriveView{Until: e.overdriveUntil}
	}
	switch e.live.Kind {
	case LiveBreach:
		sess := e.live.Breach
		view := &BreachView{
			Level:       sess.Level(),
			Progress:    sess.Progress(),
			SequenceLen: len(sess.Sequence()),
			Scanning:    !sess.Replaying(now),
			Deadline:    sess.Deadline(),
		}
		// The pattern is only exposed while it is being shown.
		if view.Scanning {
			view.Sequence = sess.Sequence()
		}
		snap.Breach = view
	case LiveBoss:
		enc := e.live.Boss
		snap.Boss = &BossView{
			ID:       enc.ID,
			Name:     enc.Name,
			HP:       enc.HP(),
			MaxHP:    enc.MaxHP,
			Charge:   enc.Charge(),
			Deadline: enc.Deadline(),
		}
	}
	return snap
}
