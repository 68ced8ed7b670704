// Package engine is the authoritative simulation core. It owns the one
// economy state, arbitrates every player intent under a single lock,
// runs the background director, and writes through to the save
// repository after each mutation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"cgtminer/internal/breach"
	"cgtminer/internal/catalog"
	"cgtminer/internal/config"
	"cgtminer/internal/ledger"
	"cgtminer/internal/reward"
	"cgtminer/internal/telemetry"
)

var (
	ErrUnknownUpgrade   = errors.New("unknown upgrade")
	ErrUnknownBooster   = errors.New("unknown booster")
	ErrUnknownCompanion = errors.New("unknown companion")
	ErrCompanionOwned   = errors.New("companion already owned")
	ErrCompanionMissing = errors.New("companion not owned")
	ErrNoLiveBreach     = errors.New("no breach in progress")
	ErrNoLiveBoss       = errors.New("no boss encounter in progress")
	ErrSectorOutOfRange = errors.New("sector out of range")
	ErrPrestigeNotReady = errors.New("not enough lifetime CGT to prestige")
)

type Engine struct {
	mu      sync.Mutex
	cfg     *config.Config
	cat     *catalog.Catalog
	st      *ledger.State
	repo    ledger.Repository
	rewards reward.Submitter
	events  telemetry.Repository
	clock   Clock
	rng     *rand.Rand
	log     *log.Logger

	live           LiveEvent
	overdriveUntil time.Time

	// onChange fans a fresh snapshot out to live spectators.
	onChange func(Snapshot)
	// recompute pokes the scheduler after anything that moves the
	// drone cycle length.
	recompute chan struct{}
}

type Options struct {
	Config  *config.Config
	Repo    ledger.Repository
	Rewards reward.Submitter
	Events  telemetry.Repository
	Clock   Clock
	Rand    *rand.Rand
	Log     *log.Logger
}

func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Repo == nil {
		opts.Repo = ledger.NewMemoryRepo()
	}
	if opts.Rewards == nil {
		opts.Rewards = reward.LocalSubmitter{Factor: opts.Config.Reward.FallbackFactor}
	}
	if opts.Events == nil {
		opts.Events = telemetry.NewMemoryRepository()
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Log == nil {
		opts.Log = log.Default()
	}

	st, err := opts.Repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load save: %w", err)
	}

	e := &Engine{
		cfg:       opts.Config,
		cat:       catalog.New(opts.Config),
		st:        st,
		repo:      opts.Repo,
		rewards:   opts.Rewards,
		events:    opts.Events,
		clock:     opts.Clock,
		rng:       opts.Rand,
		log:       opts.Log,
		live:      LiveEvent{Kind: LiveNone},
		recompute: make(chan struct{}, 1),
	}
	e.rollHotspots()
	return e, nil
}

// SetOnChange registers the snapshot fan-out; must be called before Run.
func (e *Engine) SetOnChange(fn func(Snapshot)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// save persists and notifies. Callers hold e.mu.
func (e *Engine) save(ctx context.Context) {
	if err := e.repo.Save(ctx, e.st); err != nil {
		e.log.Printf("save failed: %v", err)
	}
	if e.onChange != nil {
		e.onChange(e.snapshotLocked(e.clock.Now()))
	}
}

func (e *Engine) record(eventType telemetry.EventType, md telemetry.EventMetadata) {
	if err := e.events.RecordEvent(eventType, md); err != nil {
		e.log.Printf("telemetry: %v", err)
	}
}

// pokeScheduler wakes the automation loop so it re-reads the interval.
func (e *Engine) pokeScheduler() {
	select {
	case e.recompute <- struct{}{}:
	default:
	}
}

type ClickResult struct {
	Power            float64 `json:"power"`
	Crit             bool    `json:"crit"`
	Yield            float64 `json:"yield"`
	Earned           float64 `json:"earned"`
	BossDamage       float64 `json:"boss_damage,omitempty"`
	BossDefeated     bool    `json:"boss_defeated,omitempty"`
	BossReward       float64 `json:"boss_reward,omitempty"`
	RelicDropped     string  `json:"relic_dropped,omitempty"`
	OverdriveStarted bool    `json:"overdrive_started,omitempty"`
}

// Click is one manual mining pulse. Personal bonuses apply first, then
// the crit roll, then the live-event multiplier. With a guardian up the
// whole pulse lands as boss damage; otherwise it is submitted as work
// and the returned yield runs through the earn stack, with the
// overdrive proc and relic drop rolls riding on the earning click.
func (e *Engine) Click(ctx context.Context) (ClickResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	res := ClickResult{Power: e.manualPower(now)}

	if e.rng.Float64()*100 < e.manualCritChance() {
		res.Crit = true
		res.Power *= e.critMult()
	}
	res.Power *= e.overdriveManualMult(now)
	res.Power *= e.eventYieldMult()

	if e.live.Kind == LiveBoss {
		res.BossDamage = res.Power
		if e.live.Boss.Damage(res.Power) {
			res.BossDefeated = true
			res.BossReward = e.defeatBossLocked(now)
		}
	} else {
		yield, err := e.rewards.SubmitWork(ctx, res.Power)
		if err != nil {
			return ClickResult{}, fmt.Errorf("submit work: %w", err)
		}
		res.Yield = yield
		res.Earned = e.st.Credit(e.cat, yield, now)

		if !e.overdriveActive(now) && e.rng.Float64() < e.cfg.Events.Overdrive.Chance {
			e.overdriveUntil = now.Add(e.cfg.Events.Overdrive.Duration())
			res.OverdriveStarted = true
			e.record(telemetry.EventOverdriveStarted, telemetry.EventMetadata{
				"until": e.overdriveUntil,
			})
		}

		res.RelicDropped = e.rollRelicDrop()
	}

	e.record(telemetry.EventManualMine, telemetry.EventMetadata{
		"power": res.Power,
		"yield": res.Earned,
		"crit":  res.Crit,
	})
	e.save(ctx)
	return res, nil
}

// rollRelicDrop gives each unowned relic an independent drop roll.
// Callers hold e.mu.
func (e *Engine) rollRelicDrop() string {
	for _, def := range e.cat.Relics() {
		if e.st.HasRelic(def.ID) {
			continue
		}
		if e.rng.Float64() < def.DropChance {
			e.st.AddRelic(def.ID)
			e.record(telemetry.EventRelicDropped, telemetry.EventMetadata{
				"relic_id": def.ID,
			})
			e.pokeScheduler()
			return def.ID
		}
	}
	return ""
}

type PurchaseResult struct {
	UpgradeID string  `json:"upgrade_id"`
	Level     int     `json:"level"`
	Cost      float64 `json:"cost"`
	Balance   float64 `json:"balance"`
}

// Purchase buys the next level of a personal or drone upgrade.
func (e *Engine) Purchase(ctx context.Context, id string) (PurchaseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cost, ok := e.cat.Cost(id, e.st.UpgradeLevel(id), e.st.UpgradeLevel(catalog.DroneCooling))
	if !ok {
		return PurchaseResult{}, ErrUnknownUpgrade
	}
	if !e.st.Debit(cost) {
		return PurchaseResult{}, fmt.Errorf("insufficient CGT: need %.0f, have %.0f", cost, e.st.CGT)
	}
	e.st.BumpUpgrade(id)

	if id == catalog.UpgradeAutoMinerSpeed || id == catalog.UpgradeAutoMinerPower {
		e.pokeScheduler()
	}

	res := PurchaseResult{
		UpgradeID: id,
		Level:     e.st.UpgradeLevel(id),
		Cost:      cost,
		Balance:   e.st.CGT,
	}
	e.record(telemetry.EventUpgradePurchased, telemetry.EventMetadata{
		"upgrade_id": id,
		"level":      res.Level,
		"cost":       cost,
	})
	e.save(ctx)
	return res, nil
}

// BuyBooster arms a timed booster; buying while active extends it.
func (e *Engine) BuyBooster(ctx context.Context, id string) (time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	def, ok := e.cat.Booster(id)
	if !ok {
		return time.Time{}, ErrUnknownBooster
	}
	if !e.st.Debit(def.Cost) {
		return time.Time{}, fmt.Errorf("insufficient CGT: need %.0f, have %.0f", def.Cost, e.st.CGT)
	}
	now := e.clock.Now()
	e.st.ApplyBooster(id, def.Duration(), now)
	if def.Effect == config.BoosterIntervalMult {
		e.pokeScheduler()
	}

	expiry := e.st.Boosters[id]
	e.record(telemetry.EventBoosterPurchased, telemetry.EventMetadata{
		"booster_id": id,
		"expires_at": expiry,
	})
	e.save(ctx)
	return expiry, nil
}

// BuyCompanion purchases a companion and makes it active.
func (e *Engine) BuyCompanion(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	def, ok := e.cat.Companion(id)
	if !ok {
		return ErrUnknownCompanion
	}
	if e.st.OwnsPet(id) {
		return ErrCompanionOwned
	}
	if !e.st.Debit(def.Cost) {
		return fmt.Errorf("insufficient CGT: need %.0f, have %.0f", def.Cost, e.st.CGT)
	}
	e.st.AddPet(id)
	e.record(telemetry.EventPetPurchased, telemetry.EventMetadata{"pet_id": id})
	e.save(ctx)
	return nil
}

// ActivateCompanion switches the live companion; empty id benches all.
func (e *Engine) ActivateCompanion(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id != "" {
		if _, ok := e.cat.Companion(id); !ok {
			return ErrUnknownCompanion
		}
	}
	if !e.st.SetActivePet(id) {
		return ErrCompanionMissing
	}
	e.save(ctx)
	return nil
}

// Relocate moves the rig to another sector on the grid.
func (e *Engine) Relocate(ctx context.Context, x, y int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	size := e.cfg.Sectors.GridSize
	if x < 0 || x >= size || y < 0 || y >= size {
		return ErrSectorOutOfRange
	}
	e.st.Sector = ledger.Coord{X: x, Y: y}
	e.record(telemetry.EventSectorRelocated, telemetry.EventMetadata{
		"x": x, "y": y, "hotspot": e.st.AtHotspot(),
	})
	e.save(ctx)
	return nil
}

type PrestigeResult struct {
	SeedsGained int `json:"seeds_gained"`
	SeedsTotal  int `json:"seeds_total"`
}

// Prestige trades the current run for permanent forge cores.
func (e *Engine) Prestige(ctx context.Context) (PrestigeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.st.PrestigeSeeds
	if !e.st.Prestige(e.cat.PrestigeThreshold()) {
		return PrestigeResult{}, ErrPrestigeNotReady
	}
	res := PrestigeResult{
		SeedsGained: e.st.PrestigeSeeds - before,
		SeedsTotal:  e.st.PrestigeSeeds,
	}
	e.pokeScheduler()
	e.log.Printf("prestige: +%d forge cores (%d total)", res.SeedsGained, res.SeedsTotal)
	e.record(telemetry.EventPrestige, telemetry.EventMetadata{
		"seeds_gained": res.SeedsGained,
		"seeds_total":  res.SeedsTotal,
	})
	e.save(ctx)
	return res, nil
}

type BreachInputResult struct {
	Outcome breach.Outcome `json:"outcome"`
	Reward  float64        `json:"reward,omitempty"`
	Level   int            `json:"level"`
	Ended   bool           `json:"ended"`
}

// SubmitBreachInput feeds one tapped cell into the live breach. A
// cleared pattern pays out and rolls the next, longer one; a wrong cell
// ends the breach on the spot.
func (e *Engine) SubmitBreachInput(ctx context.Context, cell breach.Cell) (BreachInputResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.live.Kind != LiveBreach {
		return BreachInputResult{}, ErrNoLiveBreach
	}
	now := e.clock.Now()
	sess := e.live.Breach

	out, err := sess.Submit(cell, now)
	if err != nil {
		if errors.Is(err, breach.ErrExpired) {
			e.endBreachLocked(ctx, "expired")
		}
		return BreachInputResult{}, err
	}

	res := BreachInputResult{Outcome: out, Level: sess.Level()}
	switch {
	case out.Terminated:
		e.endBreachLocked(ctx, "mismatch")
		res.Ended = true
	case out.LevelCleared:
		res.Reward = e.st.Credit(e.cat, sess.LevelReward(e.manualPower(now)), now)
		e.record(telemetry.EventBreachCleared, telemetry.EventMetadata{
			"level":  sess.Level(),
			"reward": res.Reward,
		})
		sess.AdvanceLevel(now)
		e.save(ctx)
	}
	return res, nil
}

// endBreachLocked tears the breach down. Callers hold e.mu.
func (e *Engine) endBreachLocked(ctx context.Context, reason string) {
	level := 0
	if e.live.Breach != nil {
		level = e.live.Breach.Level()
	}
	e.live.Clear()
	e.log.Printf("breach ended (%s) at level %d", reason, level)
	e.record(telemetry.EventBreachEnded, telemetry.EventMetadata{
		"reason": reason,
		"level":  level,
	})
	e.save(ctx)
}

type StrikeResult struct {
	Damage       float64 `json:"damage"`
	BossDefeated bool    `json:"boss_defeated"`
	BossReward   float64 `json:"boss_reward,omitempty"`
}

// TriggerSatelliteStrike fires the fully charged satellite cannon at
// the live guardian.
func (e *Engine) TriggerSatelliteStrike(ctx context.Context) (StrikeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.live.Kind != LiveBoss {
		return StrikeResult{}, ErrNoLiveBoss
	}
	damage, killed, err := e.live.Boss.Strike()
	if err != nil {
		return StrikeResult{}, err
	}
	now := e.clock.Now()
	res := StrikeResult{Damage: damage, BossDefeated: killed}
	e.record(telemetry.EventSatelliteStrike, telemetry.EventMetadata{
		"damage": damage,
	})
	if killed {
		res.BossReward = e.defeatBossLocked(now)
	}
	e.save(ctx)
	return res, nil
}

// defeatBossLocked pays the kill bounty and clears the slot. Callers
// hold e.mu and have already confirmed the killing blow.
func (e *Engine) defeatBossLocked(now time.Time) float64 {
	enc := e.live.Boss
	reward := e.st.Credit(e.cat, enc.KillReward(e.manualPower(now)), now)
	e.log.Printf("guardian %q defeated, bounty %.0f CGT", enc.Name, reward)
	e.record(telemetry.EventBossDefeated, telemetry.EventMetadata{
		"boss":   enc.Name,
		"reward": reward,
	})
	e.live.Clear()
	return reward
}
