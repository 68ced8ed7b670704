// Package catalog wraps the static upgrade/relic/companion/booster
// definitions and owns the cost and effect math derived from them.
// All functions are pure: level in, number out.
package catalog

import (
	"math"
	"time"

	"cgtminer/internal/config"
)

// Personal upgrade ids. Levels reset on prestige.
const (
	UpgradeClickPower     = "click_power"
	UpgradeAutoMinerSpeed = "auto_miner_speed"
	UpgradeAutoMinerPower = "auto_miner_power"
	UpgradeCritChance     = "crit_chance"
)

// Drone motherboard upgrade ids. Levels persist through prestige.
const (
	DroneCPU     = "mboard_cpu"
	DroneRAM     = "mboard_ram"
	DroneCooling = "mboard_cooling"
	DroneLink    = "mboard_link"
)

type Catalog struct {
	cfg        *config.Config
	upgrades   map[string]config.UpgradeDef
	drone      map[string]config.UpgradeDef
	boosters   map[string]config.BoosterDef
	relics     map[string]config.RelicDef
	companions map[string]config.CompanionDef
}

func New(cfg *config.Config) *Catalog {
	c := &Catalog{
		cfg:        cfg,
		upgrades:   make(map[string]config.UpgradeDef, len(cfg.Upgrades)),
		drone:      make(map[string]config.UpgradeDef, len(cfg.Drone)),
		boosters:   make(map[string]config.BoosterDef, len(cfg.Market)),
		relics:     make(map[string]config.RelicDef, len(cfg.Relics)),
		companions: make(map[string]config.CompanionDef, len(cfg.Companions)),
	}
	for _, u := range cfg.Upgrades {
		c.upgrades[u.ID] = u
	}
	for _, u := range cfg.Drone {
		c.drone[u.ID] = u
	}
	for _, b := range cfg.Market {
		c.boosters[b.ID] = b
	}
	for _, r := range cfg.Relics {
		c.relics[r.ID] = r
	}
	for _, p := range cfg.Companions {
		c.companions[p.ID] = p
	}
	return c
}

func (c *Catalog) Config() *config.Config { return c.cfg }

func (c *Catalog) Upgrade(id string) (config.UpgradeDef, bool) {
	if def, ok := c.upgrades[id]; ok {
		return def, true
	}
	def, ok := c.drone[id]
	return def, ok
}

// IsPersonal reports whether id is a personal upgrade (reset on prestige)
// as opposed to a drone motherboard upgrade.
func (c *Catalog) IsPersonal(id string) bool {
	_, ok := c.upgrades[id]
	return ok
}

func (c *Catalog) IsDrone(id string) bool {
	_, ok := c.drone[id]
	return ok
}

func (c *Catalog) Booster(id string) (config.BoosterDef, bool) {
	b, ok := c.boosters[id]
	return b, ok
}

func (c *Catalog) Relic(id string) (config.RelicDef, bool) {
	r, ok := c.relics[id]
	return r, ok
}

func (c *Catalog) Companion(id string) (config.CompanionDef, bool) {
	p, ok := c.companions[id]
	return p, ok
}

func (c *Catalog) Relics() []config.RelicDef         { return c.cfg.Relics }
func (c *Catalog) Companions() []config.CompanionDef { return c.cfg.Companions }
func (c *Catalog) Boosters() []config.BoosterDef     { return c.cfg.Market }
func (c *Catalog) Upgrades() []config.UpgradeDef     { return c.cfg.Upgrades }
func (c *Catalog) DroneUpgrades() []config.UpgradeDef {
	return c.cfg.Drone
}

func (c *Catalog) PrestigeThreshold() float64 { return c.cfg.Prestige.MinCGTRequired }
func (c *Catalog) PrestigeSeedBonus() float64 { return c.cfg.Prestige.SeedBonus }
func (c *Catalog) HotspotMultiplier() float64 { return c.cfg.Sectors.HotspotMultiplier }

// Cost returns the price of the next level of an upgrade. The drone speed
// upgrade is discounted by the cooling firmware: 5% per cooling level
// (per its PowerGrowth), floored at 90% off.
func (c *Catalog) Cost(id string, level, coolingLevel int) (float64, bool) {
	def, ok := c.Upgrade(id)
	if !ok {
		return 0, false
	}
	cost := math.Floor(def.BaseCost * math.Pow(def.CostGrowth, float64(level)))
	if id == UpgradeAutoMinerSpeed {
		cooling, ok := c.drone[DroneCooling]
		if ok && coolingLevel > 0 {
			discount := 1 - cooling.PowerGrowth*float64(coolingLevel)
			cost = math.Floor(cost * math.Max(0.1, discount))
		}
	}
	return cost, true
}

// ManualPowerBase is hashrate per manual pulse before relic, companion,
// booster and event multipliers.
func (c *Catalog) ManualPowerBase(level int) float64 {
	def, ok := c.upgrades[UpgradeClickPower]
	if !ok {
		return 1
	}
	return def.PowerBase + float64(level)*def.PowerGrowth
}

// AutomationIntervalBase is the drone cycle length at a speed level.
// PowerGrowth is fractional here, so higher levels shorten the cycle;
// the floor keeps runaway speed levels from busy-looping the scheduler.
func (c *Catalog) AutomationIntervalBase(level int) time.Duration {
	def, ok := c.upgrades[UpgradeAutoMinerSpeed]
	if !ok {
		return time.Second
	}
	ms := def.PowerBase * math.Pow(def.PowerGrowth, float64(level))
	min := float64(c.cfg.Automation.MinIntervalMS)
	if ms < min {
		ms = min
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// AutomationPowerBase is payload per drone cycle: zero until the first
// capacity level, then scaled by the fleet processor's global yield bonus.
func (c *Catalog) AutomationPowerBase(level, cpuLevel int) float64 {
	if level == 0 {
		return 0
	}
	def, ok := c.upgrades[UpgradeAutoMinerPower]
	if !ok {
		return 0
	}
	power := def.PowerBase + float64(level-1)*def.PowerGrowth
	if cpu, ok := c.drone[DroneCPU]; ok {
		power *= 1 + cpu.PowerGrowth*float64(cpuLevel)
	}
	return power
}

// CritChanceBase is the manual crit chance in percent at a level.
func (c *Catalog) CritChanceBase(level int) float64 {
	def, ok := c.upgrades[UpgradeCritChance]
	if !ok {
		return 0
	}
	return def.PowerBase + float64(level)*def.PowerGrowth
}

// DroneCritChance is the drone crit chance in percent from the neural cache.
func (c *Catalog) DroneCritChance(ramLevel int) float64 {
	def, ok := c.drone[DroneRAM]
	if !ok {
		return 0
	}
	return def.PowerGrowth * float64(ramLevel)
}

// DroneOverdriveMult is what drone payouts multiply by during overdrive.
// It takes the sub-net link being installed at all; levels beyond the
// first do not stack.
func (c *Catalog) DroneOverdriveMult(linkLevel int) float64 {
	if linkLevel <= 0 {
		return 1
	}
	return c.cfg.Events.Overdrive.DroneLinkMult
}
