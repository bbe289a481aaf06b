// Command microcity runs the tile-grid zoning simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/microcity/internal/config"
	"github.com/talgya/microcity/internal/engine"
	"github.com/talgya/microcity/internal/entropy"
	"github.com/talgya/microcity/internal/persistence"
)

// globals holds the flags shared by every subcommand.
type globals struct {
	configPath string
	profile    string
	seed       int64
	cfg        config.Config
}

func main() {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "microcity",
		Short:         "Tile-grid zoning simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&g.profile, "profile", "", "rule set: classic or extended (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&g.seed, "seed", 0, "random seed, 0 = time-seeded (overrides config)")

	rootCmd.AddCommand(serveCmd(g))
	rootCmd.AddCommand(simulateCmd(g))
	rootCmd.AddCommand(renderCmd(g))
	rootCmd.AddCommand(skylineCmd(g))
	rootCmd.AddCommand(tasksCmd(g))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// load reads the config file, applies flag overrides and installs the
// default logger.
func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = g.profile
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = g.seed
	}
	g.cfg = cfg

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return nil
}

// newSimulation builds an empty city from the loaded config.
func (g *globals) newSimulation() (*engine.Simulation, error) {
	profile, err := g.cfg.EngineProfile()
	if err != nil {
		return nil, err
	}
	rng := entropy.NewSeeded(g.cfg.Seed)
	slog.Info("random source ready", "seed", rng.Seed(), "profile", profile.Name)
	return engine.NewSimulation(engine.Options{
		Profile: profile,
		Economy: g.cfg.EconomyConfig(),
		Rand:    rng,
	}), nil
}

// openDB opens the configured database, creating its directory.
func (g *globals) openDB() (*persistence.DB, error) {
	if dir := filepath.Dir(g.cfg.Database); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(g.cfg.Database)
	if err != nil {
		return nil, err
	}
	slog.Debug("database opened", "path", g.cfg.Database)
	return db, nil
}
