package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full balance + catalog configuration for the miner engine.
// Every number the simulation uses lives here so the engine itself stays
// free of inline tuning constants. Default() reproduces the shipped balance;
// a YAML file and environment variables can override it.
type Config struct {
	SaveKey    string           `yaml:"save_key" json:"save_key"`
	Prestige   PrestigeConfig   `yaml:"prestige" json:"prestige"`
	Upgrades   []UpgradeDef     `yaml:"upgrades" json:"upgrades"`
	Drone      []UpgradeDef     `yaml:"drone_motherboard" json:"drone_motherboard"`
	Market     []BoosterDef     `yaml:"market_items" json:"market_items"`
	Relics     []RelicDef       `yaml:"relics" json:"relics"`
	Companions []CompanionDef   `yaml:"data_pets" json:"data_pets"`
	Bosses     []BossDef        `yaml:"bosses" json:"bosses"`
	Events     EventsConfig     `yaml:"events" json:"events"`
	Sectors    SectorsConfig    `yaml:"sectors" json:"sectors"`
	Reward     RewardConfig     `yaml:"reward" json:"reward"`
	Automation AutomationConfig `yaml:"automation" json:"automation"`
}

type PrestigeConfig struct {
	// MinCGTRequired is lifetime earnings needed for the first forge core.
	MinCGTRequired float64 `yaml:"min_cgt_required" json:"min_cgt_required"`
	// SeedBonus is the production bonus per forge core (0.1 = +10%).
	SeedBonus float64 `yaml:"seed_bonus" json:"seed_bonus"`
}

// UpgradeDef describes one upgrade's cost and power curves.
// PowerGrowth is additive per level for yield upgrades and a fractional
// decay factor for the drone speed upgrade.
type UpgradeDef struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	BaseCost    float64 `yaml:"base_cost" json:"base_cost"`
	CostGrowth  float64 `yaml:"cost_growth" json:"cost_growth"`
	PowerBase   float64 `yaml:"power_base" json:"power_base"`
	PowerGrowth float64 `yaml:"power_growth" json:"power_growth"`
}

// Booster effect kinds.
const (
	BoosterProductionMult = "production_mult"
	BoosterManualMult     = "manual_mult"
	BoosterIntervalMult   = "interval_mult"
)

type BoosterDef struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Cost        float64 `yaml:"cost" json:"cost"`
	DurationMS  int     `yaml:"duration_ms" json:"duration_ms"`
	Effect      string  `yaml:"effect" json:"effect"`
	Value       float64 `yaml:"value" json:"value"`
}

func (b BoosterDef) Duration() time.Duration {
	return time.Duration(b.DurationMS) * time.Millisecond
}

// Relic effect kinds.
const (
	RelicManualMult        = "manual_mult"
	RelicIntervalMult      = "interval_mult"
	RelicCritMult          = "crit_mult"
	RelicBreachDurationMul = "breach_duration_mult"
)

type RelicDef struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Effect      string  `yaml:"effect" json:"effect"`
	Value       float64 `yaml:"value" json:"value"`
	// DropChance is rolled independently per successful manual click.
	DropChance float64 `yaml:"drop_chance" json:"drop_chance"`
}

// Companion bonus kinds.
const (
	PetManualMult    = "manual_mult"
	PetDroneMult     = "drone_mult"
	PetCritChance    = "crit_chance"
	PetOverdriveMult = "overdrive_mult"
)

type CompanionDef struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Cost        float64 `yaml:"cost" json:"cost"`
	BonusType   string  `yaml:"bonus_type" json:"bonus_type"`
	BonusValue  float64 `yaml:"bonus_value" json:"bonus_value"`
}

type BossDef struct {
	Name string `yaml:"name" json:"name"`
}

type EventsConfig struct {
	Breach    BreachConfig    `yaml:"breach" json:"breach"`
	Boss      BossConfig      `yaml:"boss" json:"boss"`
	Overdrive OverdriveConfig `yaml:"overdrive" json:"overdrive"`
}

type BreachConfig struct {
	Chance          float64 `yaml:"chance" json:"chance"`
	CheckIntervalMS int     `yaml:"check_interval_ms" json:"check_interval_ms"`
	DurationMS      int     `yaml:"duration_ms" json:"duration_ms"`
	Multiplier      float64 `yaml:"multiplier" json:"multiplier"`
	GridSize        int     `yaml:"grid_size" json:"grid_size"`
	RewardPerCell   float64 `yaml:"reward_per_cell" json:"reward_per_cell"`
}

func (b BreachConfig) CheckInterval() time.Duration {
	return time.Duration(b.CheckIntervalMS) * time.Millisecond
}

func (b BreachConfig) Duration() time.Duration {
	return time.Duration(b.DurationMS) * time.Millisecond
}

type BossConfig struct {
	Chance          float64 `yaml:"chance" json:"chance"`
	CheckIntervalMS int     `yaml:"check_interval_ms" json:"check_interval_ms"`
	DurationMS      int     `yaml:"duration_ms" json:"duration_ms"`
	BaseHealth      float64 `yaml:"base_health" json:"base_health"`
	HealthScaleCGT  float64 `yaml:"health_scale_cgt" json:"health_scale_cgt"`
	RewardMult      float64 `yaml:"reward_mult" json:"reward_mult"`
	// AmbientDamagePct of max HP is dealt by the ambient purge tick each second.
	AmbientDamagePct float64 `yaml:"ambient_damage_pct" json:"ambient_damage_pct"`
	StrikeDamagePct  float64 `yaml:"satellite_strike_damage" json:"satellite_strike_damage"`
	ChargePerSecond  float64 `yaml:"charge_per_second" json:"charge_per_second"`
	// AutomationDamagePct scales drone payouts when redirected into boss damage.
	AutomationDamagePct float64 `yaml:"automation_damage_pct" json:"automation_damage_pct"`
}

func (b BossConfig) CheckInterval() time.Duration {
	return time.Duration(b.CheckIntervalMS) * time.Millisecond
}

func (b BossConfig) Duration() time.Duration {
	return time.Duration(b.DurationMS) * time.Millisecond
}

type OverdriveConfig struct {
	Chance     float64 `yaml:"chance" json:"chance"`
	DurationMS int     `yaml:"duration_ms" json:"duration_ms"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	// DroneLinkMult is what drones multiply by during overdrive once the
	// sub-net link firmware is installed.
	DroneLinkMult float64 `yaml:"drone_link_mult" json:"drone_link_mult"`
}

func (o OverdriveConfig) Duration() time.Duration {
	return time.Duration(o.DurationMS) * time.Millisecond
}

type SectorsConfig struct {
	GridSize          int     `yaml:"grid_size" json:"grid_size"`
	RefreshIntervalMS int     `yaml:"refresh_interval_ms" json:"refresh_interval_ms"`
	HotspotCount      int     `yaml:"hotspot_count" json:"hotspot_count"`
	HotspotMultiplier float64 `yaml:"hotspot_multiplier" json:"hotspot_multiplier"`
}

func (s SectorsConfig) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMS) * time.Millisecond
}

type RewardConfig struct {
	// BaseURL of the remote yield service. Empty means local-only.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// AuthToken is sent as a bearer token when set.
	AuthToken      string  `yaml:"auth_token" json:"-"`
	TimeoutMS      int     `yaml:"timeout_ms" json:"timeout_ms"`
	FallbackFactor float64 `yaml:"fallback_factor" json:"fallback_factor"`
}

func (r RewardConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

type AutomationConfig struct {
	// MinIntervalMS floors the drone cycle no matter how high the speed level.
	MinIntervalMS int `yaml:"min_interval_ms" json:"min_interval_ms"`
}

func (a AutomationConfig) MinInterval() time.Duration {
	return time.Duration(a.MinIntervalMS) * time.Millisecond
}

// Default returns the shipped game balance.
func Default() *Config {
	return &Config{
		SaveKey: "cgt_miner_arcade_save",
		Prestige: PrestigeConfig{
			MinCGTRequired: 1_000_000,
			SeedBonus:      0.1,
		},
		Upgrades: []UpgradeDef{
			{
				ID:          "click_power",
				Name:        "Neural Link",
				Description: "Increase hashrate per manual pulse",
				BaseCost:    10,
				CostGrowth:  1.5,
				PowerBase:   1,
				PowerGrowth: 1,
			},
			{
				ID:          "auto_miner_speed",
				Name:        "Drone Frequency",
				Description: "Increase clock speed of active drones",
				BaseCost:    50,
				CostGrowth:  1.8,
				PowerBase:   1000,
				PowerGrowth: 0.9,
			},
			{
				ID:          "auto_miner_power",
				Name:        "Drone Capacity",
				Description: "Increase data payload per drone cycle",
				BaseCost:    200,
				CostGrowth:  2.0,
				PowerBase:   1,
				PowerGrowth: 1,
			},
			{
				ID:          "crit_chance",
				Name:        "Quantum Analysis",
				Description: "Chance to find massive data clusters",
				BaseCost:    1000,
				CostGrowth:  3.0,
				PowerBase:   5,
				PowerGrowth: 2,
			},
		},
		Drone: []UpgradeDef{
			{
				ID:          "mboard_cpu",
				Name:        "Fleet Processor",
				Description: "Global yield multiplier for all drones",
				BaseCost:    5000,
				CostGrowth:  2.5,
				PowerBase:   1.0,
				PowerGrowth: 0.2,
			},
			{
				ID:          "mboard_ram",
				Name:        "Neural Cache",
				Description: "Drones gain 2% crit chance per level",
				BaseCost:    8000,
				CostGrowth:  3.0,
				PowerBase:   0,
				PowerGrowth: 2,
			},
			{
				ID:          "mboard_cooling",
				Name:        "Cryo-Rails",
				Description: "Reduces Drone Frequency cost by 5% per level",
				BaseCost:    15000,
				CostGrowth:  4.0,
				PowerBase:   1.0,
				PowerGrowth: 0.05,
			},
			{
				ID:          "mboard_link",
				Name:        "Sub-Net Link",
				Description: "Drones produce 5x during Overdrive",
				BaseCost:    50000,
				CostGrowth:  10.0,
				PowerBase:   1,
				PowerGrowth: 1,
			},
		},
		Market: []BoosterDef{
			{
				ID:          "data_surge",
				Name:        "Data Surge",
				Description: "2x total production for 1 hour",
				Cost:        5000,
				DurationMS:  3_600_000,
				Effect:      BoosterProductionMult,
				Value:       2,
			},
			{
				ID:          "neural_overclock",
				Name:        "Neural Overclock",
				Description: "3x click power for 15 minutes",
				Cost:        2000,
				DurationMS:  900_000,
				Effect:      BoosterManualMult,
				Value:       3,
			},
			{
				ID:          "daemon_rush",
				Name:        "Daemon Rush",
				Description: "2x drone speed for 30 minutes",
				Cost:        3500,
				DurationMS:  1_800_000,
				Effect:      BoosterIntervalMult,
				Value:       0.5,
			},
		},
		Relics: []RelicDef{
			{ID: "silicon_shard", Name: "Silicon Shard", Description: "+10% Click Power", Effect: RelicManualMult, Value: 0.10, DropChance: 0.001},
			{ID: "logic_gate", Name: "Logic Gate", Description: "+10% Drone Speed", Effect: RelicIntervalMult, Value: 0.9, DropChance: 0.001},
			{ID: "overclock_chip", Name: "Overclock Chip", Description: "Crits deal 8x instead of 5x", Effect: RelicCritMult, Value: 8, DropChance: 0.001},
			{ID: "buffer_overflow", Name: "Buffer Overflow", Description: "+20% Breach duration", Effect: RelicBreachDurationMul, Value: 1.2, DropChance: 0.001},
		},
		Companions: []CompanionDef{
			{
				ID:          "pulse_core",
				Name:        "PULSE CORE",
				Description: "A stabilized energy orb. +15% Manual Mining Power.",
				Cost:        5000,
				BonusType:   PetManualMult,
				BonusValue:  0.15,
			},
			{
				ID:          "drone_link",
				Name:        "DRONE LINK",
				Description: "Advanced signal repeater. +20% Drone Production.",
				Cost:        25000,
				BonusType:   PetDroneMult,
				BonusValue:  0.20,
			},
			{
				ID:          "crit_eye",
				Name:        "CRIT-EYE",
				Description: "Analyzes data weakpoints. +5% Global Critical Chance.",
				Cost:        100000,
				BonusType:   PetCritChance,
				BonusValue:  5,
			},
			{
				ID:          "void_siphon",
				Name:        "VOID SIPHON",
				Description: "Harvests background noise. 2x Production during Overdrive.",
				Cost:        500000,
				BonusType:   PetOverdriveMult,
				BonusValue:  2,
			},
		},
		Bosses: []BossDef{
			{Name: "System Sentinel"},
			{Name: "Data Leviathan"},
			{Name: "Core Architect"},
		},
		Events: EventsConfig{
			Breach: BreachConfig{
				Chance:          0.008,
				CheckIntervalMS: 5000,
				DurationMS:      20000,
				Multiplier:      15,
				GridSize:        3,
				RewardPerCell:   50,
			},
			Boss: BossConfig{
				Chance:              0.002,
				CheckIntervalMS:     10000,
				DurationMS:          30000,
				BaseHealth:          1000,
				HealthScaleCGT:      10000,
				RewardMult:          100,
				AmbientDamagePct:    0.02,
				StrikeDamagePct:     0.25,
				ChargePerSecond:     0.12,
				AutomationDamagePct: 0.1,
			},
			Overdrive: OverdriveConfig{
				Chance:        0.01,
				DurationMS:    10000,
				Multiplier:    5,
				DroneLinkMult: 5,
			},
		},
		Sectors: SectorsConfig{
			GridSize:          8,
			RefreshIntervalMS: 60000,
			HotspotCount:      5,
			HotspotMultiplier: 1.5,
		},
		Reward: RewardConfig{
			BaseURL:        "",
			TimeoutMS:      2000,
			FallbackFactor: 1.5,
		},
		Automation: AutomationConfig{
			MinIntervalMS: 100,
		},
	}
}

// Load reads a YAML config file and merges it over the defaults. Sections
// absent from the file keep their default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults backfills zero values that would break the simulation.
func (c *Config) ApplyDefaults() {
	if c.SaveKey == "" {
		c.SaveKey = "cgt_miner_arcade_save"
	}
	if c.Prestige.MinCGTRequired <= 0 {
		c.Prestige.MinCGTRequired = 1_000_000
	}
	if c.Prestige.SeedBonus <= 0 {
		c.Prestige.SeedBonus = 0.1
	}
	if c.Events.Breach.GridSize <= 0 {
		c.Events.Breach.GridSize = 3
	}
	if c.Events.Breach.RewardPerCell <= 0 {
		c.Events.Breach.RewardPerCell = 50
	}
	if c.Events.Boss.HealthScaleCGT <= 0 {
		c.Events.Boss.HealthScaleCGT = 10000
	}
	if c.Sectors.GridSize <= 0 {
		c.Sectors.GridSize = 8
	}
	if c.Sectors.HotspotMultiplier <= 0 {
		c.Sectors.HotspotMultiplier = 1.5
	}
	if c.Reward.FallbackFactor <= 0 {
		c.Reward.FallbackFactor = 1.5
	}
	if c.Reward.TimeoutMS <= 0 {
		c.Reward.TimeoutMS = 2000
	}
	if c.Automation.MinIntervalMS <= 0 {
		c.Automation.MinIntervalMS = 100
	}
}
