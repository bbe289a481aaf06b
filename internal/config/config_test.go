package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/microcity/internal/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "microcity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("MICROCITY_ADMIN_KEY", "")
	t.Setenv("MICROCITY_DB", "")
	t.Setenv("CANVAS_TOKEN", "")
	t.Setenv("MICROCITY_SEED", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 350*time.Millisecond, cfg.StepInterval())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())

	p, err := cfg.EngineProfile()
	require.NoError(t, err)
	assert.Equal(t, engine.ClassicProfile(), p)

	eco := cfg.EconomyConfig()
	assert.Equal(t, 5000.0, eco.StartingMoney)
	assert.Equal(t, 40.0, eco.Upkeep)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("MICROCITY_ADMIN_KEY", "")
	t.Setenv("MICROCITY_DB", "")
	t.Setenv("CANVAS_TOKEN", "")
	t.Setenv("MICROCITY_SEED", "")

	path := writeConfig(t, `
profile: extended
seed: 99
step_interval_ms: 500
log_level: debug
economy:
  enabled: true
  starting_money: 1200
  costs:
    road: 5
    school: 80
tasks:
  base_url: https://canvas.example.edu
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 500*time.Millisecond, cfg.StepInterval())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "https://canvas.example.edu", cfg.Tasks.BaseURL)
	assert.Equal(t, "data/microcity.db", cfg.Database, "unset keys keep defaults")

	p, err := cfg.EngineProfile()
	require.NoError(t, err)
	assert.Equal(t, engine.ProfileExtended, p.Name)
	assert.True(t, p.Economy, "ledger forced on")
	assert.True(t, p.ToolUnlocks)

	eco := cfg.EconomyConfig()
	assert.Equal(t, 1200.0, eco.StartingMoney)
	assert.Equal(t, 5.0, eco.Costs.Road)
	assert.Equal(t, 80.0, eco.Costs.School)
	assert.Equal(t, 20.0, eco.Costs.Residential, "unset costs keep defaults")
}

func TestLoadAmenityOverride(t *testing.T) {
	path := writeConfig(t, `
profile: classic
amenities:
  park: {enabled: true, bonus: 3, cleanse: 2, count: 1}
  plaza: {enabled: true, bonus: 2, cleanse: 1.5, count: 0.8}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	p, err := cfg.EngineProfile()
	require.NoError(t, err)
	assert.True(t, p.Amenities.Plaza.Enabled)
	assert.False(t, p.Amenities.School.Enabled)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":      "colour: blue\n",
		"bad profile":      "profile: sandbox\n",
		"interval too low": "step_interval_ms: 1\n",
		"negative cost":    "economy:\n  costs:\n    road: -3\n",
		"wrong type":       "seed: lots\n",
		"bad url":          "tasks:\n  base_url: canvas.local\n",
		"bad log level":    "log_level: loud\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "profile: [unterminated\n"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEmptyFileUsesDefaults(t *testing.T) {
	t.Setenv("MICROCITY_ADMIN_KEY", "")
	t.Setenv("MICROCITY_DB", "")
	t.Setenv("CANVAS_TOKEN", "")
	t.Setenv("MICROCITY_SEED", "")

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MICROCITY_ADMIN_KEY", "hunter2")
	t.Setenv("MICROCITY_DB", "/tmp/other.db")
	t.Setenv("CANVAS_TOKEN", "tok")
	t.Setenv("MICROCITY_SEED", "17")

	cfg, err := Load(writeConfig(t, "admin_key: fromfile\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.AdminKey)
	assert.Equal(t, "/tmp/other.db", cfg.Database)
	assert.Equal(t, "tok", cfg.Tasks.Token)
	assert.Equal(t, int64(17), cfg.Seed)
}

func TestEngineProfileUnknown(t *testing.T) {
	cfg := Defaults()
	cfg.Profile = "sandbox"
	_, err := cfg.EngineProfile()
	assert.ErrorIs(t, err, ErrInvalid)
}
