package engine

import (
	"context"
	"fmt"
	"time"

	"cgtminer/internal/telemetry"
)

type AutomationResult struct {
	Power        float64 `json:"power"`
	Crit         bool    `json:"crit"`
	Earned       float64 `json:"earned"`
	BossDamage   float64 `json:"boss_damage,omitempty"`
	BossDefeated bool    `json:"boss_defeated,omitempty"`
	// NextFire is when the drones cycle again at current rates.
	NextFire time.Duration `json:"-"`
}

// AutomationFire runs one drone cycle. The payout lands as currency,
// unless a guardian is up, in which case it is redirected into boss
// damage instead. A zero-capacity fleet still reports the next cycle
// length so the scheduler keeps pace with speed upgrades.
func (e *Engine) AutomationFire(ctx context.Context) (AutomationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	res := AutomationResult{
		Power:    e.automationPower(),
		NextFire: e.automationInterval(now),
	}
	if res.Power <= 0 {
		return res, nil
	}

	if e.rng.Float64()*100 < e.droneCritChance() {
		res.Crit = true
		res.Power *= e.critMult()
	}
	res.Power *= e.overdriveDroneMult(now)
	res.Power *= e.eventYieldMult()

	// While a guardian is up the whole payout is redirected into boss
	// damage; nothing is credited as currency.
	if e.live.Kind == LiveBoss {
		dmg, killed := e.live.Boss.AutomationDamage(res.Power)
		res.BossDamage = dmg
		if killed {
			res.BossDefeated = true
			e.defeatBossLocked(now)
		}
	} else {
		yield, err := e.rewards.SubmitWork(ctx, res.Power)
		if err != nil {
			return AutomationResult{}, fmt.Errorf("submit work: %w", err)
		}
		res.Earned = e.st.Credit(e.cat, yield, now)
	}

	e.record(telemetry.EventAutomationFire, telemetry.EventMetadata{
		"power": res.Power,
		"yield": res.Earned,
		"crit":  res.Crit,
	})
	e.save(ctx)
	return res, nil
}

// AutomationInterval is the live drone cycle length.
func (e *Engine) AutomationInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.automationInterval(e.clock.Now())
}
