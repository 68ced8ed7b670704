package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasFullCatalog(t *testing.T) {
	cfg := Default()

	assert.Len(t, cfg.Upgrades, 4)
	assert.Len(t, cfg.Drone, 4)
	assert.Len(t, cfg.Market, 3)
	assert.Len(t, cfg.Relics, 4)
	assert.Len(t, cfg.Companions, 4)
	assert.Equal(t, float64(1_000_000), cfg.Prestige.MinCGTRequired)
	assert.Equal(t, 3, cfg.Events.Breach.GridSize)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miner.yml")
	body := []byte("prestige:\n  min_cgt_required: 500\nsectors:\n  hotspot_count: 2\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, float64(500), cfg.Prestige.MinCGTRequired)
	assert.Equal(t, 2, cfg.Sectors.HotspotCount)
	// Untouched sections keep defaults.
	assert.Len(t, cfg.Upgrades, 4)
	assert.Equal(t, 0.008, cfg.Events.Breach.Chance)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte(":{nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CGT_PRESTIGE_MIN", "2000")
	t.Setenv("CGT_REWARD_URL", "http://localhost:9999")
	t.Setenv("CGT_HOTSPOT_COUNT", "garbage")

	cfg := FromEnv(Default())

	assert.Equal(t, float64(2000), cfg.Prestige.MinCGTRequired)
	assert.Equal(t, "http://localhost:9999", cfg.Reward.BaseURL)
	assert.Equal(t, 5, cfg.Sectors.HotspotCount)
}
