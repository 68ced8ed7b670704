// Package ledger owns the player economy: the CGT balance, lifetime
// earnings, prestige cores, upgrade levels and cosmetic ownership.
// Every mutation of currency goes through Credit/Debit so the guards in
// one place hold for the whole engine.
package ledger

import (
	"math"
	"time"

	"cgtminer/internal/catalog"
	"cgtminer/internal/config"
)

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// State is the single mutable economy aggregate for a session.
type State struct {
	CGT           float64              `json:"cgt"`
	TotalMined    float64              `json:"total_cgt_mined"`
	PrestigeSeeds int                  `json:"prestige_seeds"`
	Upgrades      map[string]int       `json:"upgrades"`
	DroneUpgrades map[string]int       `json:"drone_upgrades"`
	Relics        []string             `json:"relics"`
	Boosters      map[string]time.Time `json:"boosters"`
	Sector        Coord                `json:"current_sector"`
	Hotspots      []Coord              `json:"hotspots"`
	OwnedPets     []string             `json:"owned_pets"`
	ActivePetID   string               `json:"active_pet_id"`
}

// NewState returns the zero-progress economy: no CGT, no upgrades,
// docked at sector (0,0).
func NewState() *State {
	return &State{
		Upgrades: map[string]int{
			catalog.UpgradeClickPower:     0,
			catalog.UpgradeAutoMinerSpeed: 0,
			catalog.UpgradeAutoMinerPower: 0,
			catalog.UpgradeCritChance:     0,
		},
		DroneUpgrades: map[string]int{
			catalog.DroneCPU:     0,
			catalog.DroneRAM:     0,
			catalog.DroneCooling: 0,
			catalog.DroneLink:    0,
		},
		Relics:    []string{},
		Boosters:  map[string]time.Time{},
		Hotspots:  []Coord{},
		OwnedPets: []string{},
	}
}

// Multipliers is the multiplicative stack applied to every earn.
type Multipliers struct {
	Prestige float64 `json:"prestige"`
	Sector   float64 `json:"sector"`
	Booster  float64 `json:"booster"`
}

func (m Multipliers) Effective() float64 {
	return m.Prestige * m.Sector * m.Booster
}

// Multipliers computes the current stack: forge-core bonus, hotspot bonus,
// and any active production boosters.
func (st *State) Multipliers(cat *catalog.Catalog, now time.Time) Multipliers {
	m := Multipliers{
		Prestige: 1 + cat.PrestigeSeedBonus()*float64(st.PrestigeSeeds),
		Sector:   1,
		Booster:  1,
	}
	if st.AtHotspot() {
		m.Sector = cat.HotspotMultiplier()
	}
	for id, expiry := range st.Boosters {
		if !expiry.After(now) {
			continue
		}
		if def, ok := cat.Booster(id); ok && def.Effect == config.BoosterProductionMult {
			m.Booster *= def.Value
		}
	}
	return m
}

// Credit adds amount scaled by the multiplier stack to the balance and the
// lifetime total, returning what was actually earned. Non-positive amounts
// earn nothing.
func (st *State) Credit(cat *catalog.Catalog, amount float64, now time.Time) float64 {
	if amount <= 0 {
		return 0
	}
	earned := amount * st.Multipliers(cat, now).Effective()
	st.CGT += earned
	st.TotalMined += earned
	return earned
}

// Debit spends amount if the balance covers it. The check and the
// subtraction are one step; a failed debit changes nothing.
func (st *State) Debit(amount float64) bool {
	if st.CGT < amount {
		return false
	}
	st.CGT -= amount
	return true
}

// PendingSeeds is how many forge cores a prestige would grant right now.
func (st *State) PendingSeeds(threshold float64) int {
	if threshold <= 0 || st.TotalMined < threshold {
		return 0
	}
	return int(math.Floor(math.Sqrt(st.TotalMined / threshold)))
}

func (st *State) CanPrestige(threshold float64) bool {
	return st.PendingSeeds(threshold) > 0
}

// Prestige banks the pending forge cores and resets the run: balance,
// lifetime total and personal upgrades go to zero. Drone firmware, relics
// and pets survive. A prestige with nothing pending is a no-op.
func (st *State) Prestige(threshold float64) bool {
	pending := st.PendingSeeds(threshold)
	if pending <= 0 {
		return false
	}
	st.PrestigeSeeds += pending
	st.CGT = 0
	st.TotalMined = 0
	for id := range st.Upgrades {
		st.Upgrades[id] = 0
	}
	return true
}

// UpgradeLevel looks up a level in either upgrade map.
func (st *State) UpgradeLevel(id string) int {
	if lvl, ok := st.Upgrades[id]; ok {
		return lvl
	}
	return st.DroneUpgrades[id]
}

// BumpUpgrade increments whichever map holds id.
func (st *State) BumpUpgrade(id string) bool {
	if _, ok := st.Upgrades[id]; ok {
		st.Upgrades[id]++
		return true
	}
	if _, ok := st.DroneUpgrades[id]; ok {
		st.DroneUpgrades[id]++
		return true
	}
	return false
}

func (st *State) HasRelic(id string) bool {
	for _, r := range st.Relics {
		if r == id {
			return true
		}
	}
	return false
}

// AddRelic records a relic; relics are permanent and never duplicated.
func (st *State) AddRelic(id string) bool {
	if st.HasRelic(id) {
		return false
	}
	st.Relics = append(st.Relics, id)
	return true
}

func (st *State) BoosterActive(id string, now time.Time) bool {
	expiry, ok := st.Boosters[id]
	return ok && expiry.After(now)
}

// ApplyBooster arms or extends a booster. Buying while active stacks the
// duration onto the current expiry instead of restarting it.
func (st *State) ApplyBooster(id string, duration time.Duration, now time.Time) {
	start := now
	if st.BoosterActive(id, now) {
		start = st.Boosters[id]
	}
	st.Boosters[id] = start.Add(duration)
}

// PruneBoosters drops expired entries so the save file does not accrete.
func (st *State) PruneBoosters(now time.Time) {
	for id, expiry := range st.Boosters {
		if !expiry.After(now) {
			delete(st.Boosters, id)
		}
	}
}

func (st *State) AtHotspot() bool {
	for _, h := range st.Hotspots {
		if h == st.Sector {
			return true
		}
	}
	return false
}

func (st *State) OwnsPet(id string) bool {
	for _, p := range st.OwnedPets {
		if p == id {
			return true
		}
	}
	return false
}

// AddPet records ownership and makes the new pet active.
func (st *State) AddPet(id string) bool {
	if st.OwnsPet(id) {
		return false
	}
	st.OwnedPets = append(st.OwnedPets, id)
	st.ActivePetID = id
	return true
}

// SetActivePet switches the active pet; empty id parks all pets.
func (st *State) SetActivePet(id string) bool {
	if id == "" || st.OwnsPet(id) {
		st.ActivePetID = id
		return true
	}
	return false
}

// PetBonus returns the active pet's bonus value if its kind matches.
func (st *State) PetBonus(cat *catalog.Catalog, kind string) float64 {
	if st.ActivePetID == "" {
		return 0
	}
	pet, ok := cat.Companion(st.ActivePetID)
	if !ok || pet.BonusType != kind {
		return 0
	}
	return pet.BonusValue
}

// Clone returns a deep copy safe to hand to snapshots and savers.
func (st *State) Clone() *State {
	out := &State{
		CGT:           st.CGT,
		TotalMined:    st.TotalMined,
		PrestigeSeeds: st.PrestigeSeeds,
		Upgrades:      make(map[string]int, len(st.Upgrades)),
		DroneUpgrades: make(map[string]int, len(st.DroneUpgrades)),
		Relics:        append([]string{}, st.Relics...),
		Boosters:      make(map[string]time.Time, len(st.Boosters)),
		Sector:        st.Sector,
		Hotspots:      append([]Coord{}, st.Hotspots...),
		OwnedPets:     append([]string{}, st.OwnedPets...),
		ActivePetID:   st.ActivePetID,
	}
	for k, v := range st.Upgrades {
		out.Upgrades[k] = v
	}
	for k, v := range st.DroneUpgrades {
		out.DroneUpgrades[k] = v
	}
	for k, v := range st.Boosters {
		out.Boosters[k] = v
	}
	return out
}
