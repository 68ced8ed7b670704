// Package boss models firewall guardian encounters: a timed fight where
// drones, manual clicks and the satellite strike chip away at a health
// pool before the window closes.
package boss

import (
	"errors"
	"math"
	"time"

	"cgtminer/internal/config"

	"github.com/google/uuid"
)

// ErrStrikeNotCharged is returned when the satellite cannon is fired
// before its charge bar fills.
var ErrStrikeNotCharged = errors.New("boss: satellite strike not charged")

// Encounter is one live guardian fight. Not safe for concurrent use;
// the engine serializes access.
type Encounter struct {
	ID       string
	Name     string
	MaxHP    float64
	deadline time.Time
	cfg      config.BossConfig

	hp     float64
	charge float64
}

// New spawns a guardian scaled to lifetime earnings: health grows by a
// full base pool per HealthScaleCGT mined, never below one pool.
func New(cfg config.BossConfig, name string, totalMined float64, now time.Time) *Encounter {
	scale := math.Floor(totalMined / cfg.HealthScaleCGT)
	if scale < 1 {
		scale = 1
	}
	maxHP := cfg.BaseHealth * scale
	return &Encounter{
		ID:       uuid.NewString(),
		Name:     name,
		MaxHP:    maxHP,
		deadline: now.Add(cfg.Duration()),
		cfg:      cfg,
		hp:       maxHP,
	}
}

// HP is the displayed health, clamped at zero even though the raw pool
// can be driven negative by a single large hit.
func (e *Encounter) HP() float64 {
	return math.Max(0, e.hp)
}

func (e *Encounter) Deadline() time.Time { return e.deadline }
func (e *Encounter) Charge() float64     { return e.charge }
func (e *Encounter) Defeated() bool      { return e.hp <= 0 }

func (e *Encounter) Expired(now time.Time) bool {
	return now.After(e.deadline)
}

// Damage applies a hit and reports whether it was the killing blow.
// Damage on an already-defeated guardian does nothing.
func (e *Encounter) Damage(amount float64) bool {
	if amount <= 0 || e.hp <= 0 {
		return false
	}
	e.hp -= amount
	return e.hp <= 0
}

// AmbientTick is the per-second background purge every player deals for
// free while the fight is up.
func (e *Encounter) AmbientTick() bool {
	return e.Damage(e.cfg.AmbientDamagePct * e.MaxHP)
}

// AutomationDamage converts one drone payout into boss damage and
// reports what was dealt and whether it was the killing blow.
func (e *Encounter) AutomationDamage(power float64) (float64, bool) {
	dmg := power * e.cfg.AutomationDamagePct
	return dmg, e.Damage(dmg)
}

// ChargeTick advances the satellite charge bar by dt worth of charging,
// saturating at full.
func (e *Encounter) ChargeTick(dt time.Duration) {
	e.charge += e.cfg.ChargePerSecond * dt.Seconds()
	if e.charge > 1 {
		e.charge = 1
	}
}

// Strike fires the satellite cannon for a fixed fraction of max health
// and drains the charge bar. Only a full bar can fire.
func (e *Encounter) Strike() (float64, bool, error) {
	if e.charge < 1 {
		return 0, false, ErrStrikeNotCharged
	}
	e.charge = 0
	damage := e.cfg.StrikeDamagePct * e.MaxHP
	return damage, e.Damage(damage), nil
}

// KillReward is the payout for downing the guardian before the window
// closes.
func (e *Encounter) KillReward(manualPower float64) float64 {
	return manualPower * e.cfg.RewardMult
}
