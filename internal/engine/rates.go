package engine

import (
	"time"

	"cgtminer/internal/catalog"
	"cgtminer/internal/config"
)

// baseCritMult is what a critical pulse multiplies by before relics.
const baseCritMult = 5

// The rate helpers below assume e.mu is held. They fold the owned
// relics, active boosters, the active companion and any live event into
// the catalog base curves.

// manualPower is hashrate per manual pulse before crit and before the
// exclusive-event multiplier.
func (e *Engine) manualPower(now time.Time) float64 {
	power := e.cat.ManualPowerBase(e.st.UpgradeLevel(catalog.UpgradeClickPower))
	for _, id := range e.st.Relics {
		if def, ok := e.cat.Relic(id); ok && def.Effect == config.RelicManualMult {
			power *= 1 + def.Value
		}
	}
	for id := range e.st.Boosters {
		if !e.st.BoosterActive(id, now) {
			continue
		}
		if def, ok := e.cat.Booster(id); ok && def.Effect == config.BoosterManualMult {
			power *= def.Value
		}
	}
	power *= 1 + e.st.PetBonus(e.cat, config.PetManualMult)
	return power
}

// automationPower is payload per drone cycle before crit and events.
func (e *Engine) automationPower() float64 {
	power := e.cat.AutomationPowerBase(
		e.st.UpgradeLevel(catalog.UpgradeAutoMinerPower),
		e.st.UpgradeLevel(catalog.DroneCPU),
	)
	power *= 1 + e.st.PetBonus(e.cat, config.PetDroneMult)
	return power
}

// automationInterval is the live drone cycle length with relic and
// booster speedups applied.
func (e *Engine) automationInterval(now time.Time) time.Duration {
	interval := float64(e.cat.AutomationIntervalBase(e.st.UpgradeLevel(catalog.UpgradeAutoMinerSpeed)))
	for _, id := range e.st.Relics {
		if def, ok := e.cat.Relic(id); ok && def.Effect == config.RelicIntervalMult {
			interval *= def.Value
		}
	}
	for id := range e.st.Boosters {
		if !e.st.BoosterActive(id, now) {
			continue
		}
		if def, ok := e.cat.Booster(id); ok && def.Effect == config.BoosterIntervalMult {
			interval *= def.Value
		}
	}
	return time.Duration(interval)
}

// manualCritChance is in percent.
func (e *Engine) manualCritChance() float64 {
	return e.cat.CritChanceBase(e.st.UpgradeLevel(catalog.UpgradeCritChance)) +
		e.st.PetBonus(e.cat, config.PetCritChance)
}

// droneCritChance is in percent.
func (e *Engine) droneCritChance() float64 {
	return e.cat.DroneCritChance(e.st.UpgradeLevel(catalog.DroneRAM)) +
		e.st.PetBonus(e.cat, config.PetCritChance)
}

// critMult is 5x stock; the overclock relic raises it.
func (e *Engine) critMult() float64 {
	mult := float64(baseCritMult)
	for _, id := range e.st.Relics {
		if def, ok := e.cat.Relic(id); ok && def.Effect == config.RelicCritMult {
			mult = def.Value
		}
	}
	return mult
}

func (e *Engine) overdriveActive(now time.Time) bool {
	return e.overdriveUntil.After(now)
}

// overdriveManualMult is the flat manual pulse multiplier while
// overdrive runs. The companion overdrive bonus only affects drones.
func (e *Engine) overdriveManualMult(now time.Time) float64 {
	if !e.overdriveActive(now) {
		return 1
	}
	return e.cfg.Events.Overdrive.Multiplier
}

// overdriveDroneMult only kicks in once the sub-net link is installed.
func (e *Engine) overdriveDroneMult(now time.Time) float64 {
	if !e.overdriveActive(now) {
		return 1
	}
	mult := e.cat.DroneOverdriveMult(e.st.UpgradeLevel(catalog.DroneLink))
	if bonus := e.st.PetBonus(e.cat, config.PetOverdriveMult); bonus > 0 {
		mult *= bonus
	}
	return mult
}

// eventYieldMult is the exclusive-event production multiplier: a live
// breach overclocks everything, everything else leaves it at one.
func (e *Engine) eventYieldMult() float64 {
	if e.live.Kind == LiveBreach {
		return e.live.Breach.Multiplier()
	}
	return 1
}
