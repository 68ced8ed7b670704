package config

import (
	"os"
	"strconv"
)

// FromEnv applies environment variable overrides on top of cfg.
// Unset or unparseable variables leave the existing value alone.
func FromEnv(cfg *Config) *Config {
	if v := os.Getenv("CGT_SAVE_KEY"); v != "" {
		cfg.SaveKey = v
	}
	if v := getEnvFloat("CGT_PRESTIGE_MIN"); v > 0 {
		cfg.Prestige.MinCGTRequired = v
	}
	if v := getEnvFloat("CGT_BREACH_CHANCE"); v > 0 {
		cfg.Events.Breach.Chance = v
	}
	if v := getEnvFloat("CGT_BOSS_CHANCE"); v > 0 {
		cfg.Events.Boss.Chance = v
	}
	if v := getEnvInt("CGT_SECTOR_REFRESH_MS"); v > 0 {
		cfg.Sectors.RefreshIntervalMS = v
	}
	if v := getEnvInt("CGT_HOTSPOT_COUNT"); v > 0 {
		cfg.Sectors.HotspotCount = v
	}
	if v := os.Getenv("CGT_REWARD_URL"); v != "" {
		cfg.Reward.BaseURL = v
	}
	if v := os.Getenv("CGT_REWARD_TOKEN"); v != "" {
		cfg.Reward.AuthToken = v
	}
	if v := getEnvInt("CGT_REWARD_TIMEOUT_MS"); v > 0 {
		cfg.Reward.TimeoutMS = v
	}
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvFloat(key string) float64 {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return num
}
