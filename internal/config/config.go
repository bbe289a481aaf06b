// Package config loads the microcity YAML configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/microcity/internal/economy"
	"github.com/talgya/microcity/internal/engine"
	"github.com/talgya/microcity/internal/world"
)

// ErrInvalid wraps schema validation failures.
var ErrInvalid = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Profile        string            `yaml:"profile"`
	Seed           int64             `yaml:"seed"`
	StepIntervalMs int               `yaml:"step_interval_ms"`
	Database       string            `yaml:"database"`
	Listen         string            `yaml:"listen"`
	AdminKey       string            `yaml:"admin_key"`
	LogLevel       string            `yaml:"log_level"`
	Economy        EconomyConfig     `yaml:"economy"`
	Amenities      *world.AmenitySet `yaml:"amenities,omitempty"`
	Tasks          TasksConfig       `yaml:"tasks"`
}

// EconomyConfig toggles and tunes the money ledger. A nil Enabled keeps the
// profile's default.
type EconomyConfig struct {
	Enabled        *bool         `yaml:"enabled"`
	StartingMoney  float64       `yaml:"starting_money"`
	Costs          economy.Costs `yaml:"costs"`
	BulldozeRefund float64       `yaml:"bulldoze_refund"`
}

// TasksConfig points at the external to-do API.
type TasksConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	eco := economy.DefaultConfig()
	return Config{
		Profile:        engine.ProfileClassic,
		StepIntervalMs: int(engine.DefaultInterval / time.Millisecond),
		Database:       "data/microcity.db",
		Listen:         ":8080",
		LogLevel:       "info",
		Economy: EconomyConfig{
			StartingMoney:  eco.StartingMoney,
			Costs:          eco.Costs,
			BulldozeRefund: eco.BulldozeRefund,
		},
	}
}

// Load reads and validates a config file. An empty path yields Defaults
// with environment overrides applied.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Parse validates raw YAML against the schema and decodes it over cfg.
func Parse(raw []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc != nil {
		if err := validate(doc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// validate checks a decoded YAML document against the embedded schema. The
// document is round-tripped through JSON so numbers and maps have the
// shapes the validator expects.
func validate(doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalise: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("normalise: %w", err)
	}
	return compiledSchema.Validate(v)
}

var compiledSchema = jsonschema.MustCompileString("microcity.schema.json", schema)

func (c *Config) applyEnv() {
	if v := os.Getenv("MICROCITY_ADMIN_KEY"); v != "" {
		c.AdminKey = v
	}
	if v := os.Getenv("MICROCITY_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("CANVAS_TOKEN"); v != "" {
		c.Tasks.Token = v
	}
	if v := os.Getenv("MICROCITY_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
}

// EngineProfile resolves the rule set, applying the economy and amenity
// overrides.
func (c Config) EngineProfile() (engine.Profile, error) {
	p, ok := engine.ProfileByName(c.Profile)
	if !ok {
		return p, fmt.Errorf("%w: unknown profile %q", ErrInvalid, c.Profile)
	}
	if c.Economy.Enabled != nil {
		p.Economy = *c.Economy.Enabled
	}
	if c.Amenities != nil {
		p.Amenities = *c.Amenities
	}
	return p, nil
}

// EconomyConfig returns the ledger parameters with file overrides applied.
func (c Config) EconomyConfig() economy.Config {
	eco := economy.DefaultConfig()
	eco.StartingMoney = c.Economy.StartingMoney
	eco.Costs = c.Economy.Costs
	eco.BulldozeRefund = c.Economy.BulldozeRefund
	return eco
}

// StepInterval returns the auto-step period.
func (c Config) StepInterval() time.Duration {
	if c.StepIntervalMs <= 0 {
		return engine.DefaultInterval
	}
	return time.Duration(c.StepIntervalMs) * time.Millisecond
}

// SlogLevel maps the configured log level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
