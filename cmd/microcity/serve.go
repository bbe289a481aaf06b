package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/microcity/internal/api"
	"github.com/talgya/microcity/internal/engine"
	"github.com/talgya/microcity/internal/persistence"
	"github.com/talgya/microcity/internal/progress"
	"github.com/talgya/microcity/internal/tasks"
	"github.com/talgya/microcity/internal/world"
)

const (
	saveInterval = 10 * time.Second
	eventHistory = 200
)

func serveCmd(g *globals) *cobra.Command {
	var (
		town   bool
		listen string
		run    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the city with the HTTP API and live stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				g.cfg.Listen = listen
			}
			return runServe(g, town, run)
		},
	}
	cmd.Flags().BoolVar(&town, "town", false, "seed a starter town when no saved city exists")
	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVar(&run, "run", false, "start auto-stepping immediately")
	return cmd
}

func runServe(g *globals, town, run bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := g.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sim, err := g.newSimulation()
	if err != nil {
		return err
	}
	slog.Info("microcity starting", "profile", sim.Profile().Name, "economy", sim.Profile().Economy)

	// ── Event log continues from the database ─────────────────────────
	mark, err := db.EventMark()
	if err != nil {
		return fmt.Errorf("read event mark: %w", err)
	}
	history, err := db.EventHistory(eventHistory)
	if err != nil {
		return err
	}
	sim.ResumeEvents(mark, history)

	// ── Load or seed the city ─────────────────────────────────────────
	st, ok, err := db.LoadLatestCity()
	if err != nil {
		return err
	}
	switch {
	case ok && st.Profile == sim.Profile().Name:
		sim.Restore(st)
		slog.Info("city restored", "day", st.Day, "population", humanize.Comma(int64(sim.Stats().Population)))
	case ok:
		slog.Warn("saved city uses another profile, starting fresh", "saved", st.Profile, "active", sim.Profile().Name)
		fallthrough
	default:
		if town {
			cfg := world.DefaultTownConfig()
			cfg.Seed = g.cfg.Seed
			sim.Seed(cfg)
			counts := world.KindCounts(sim.Snapshot().Grid)
			slog.Info("starter town generated",
				"roads", counts[world.Road],
				"residential", counts[world.Residential],
				"commercial", counts[world.Commercial],
				"industrial", counts[world.Industrial],
			)
		}
	}

	// ── Progress ──────────────────────────────────────────────────────
	fields, err := db.LoadFields()
	if err != nil {
		return err
	}
	tracker := progress.NewTracker(fields)
	tracker.OnChange = func(p progress.Progress, fields map[string]string) {
		sim.ApplyProgress(p)
		if err := db.SaveFields(fields); err != nil {
			slog.Error("progress save failed", "error", err)
		}
	}
	sim.ApplyProgress(tracker.Progress())
	tracker.Poll()

	// ── Auto-step ─────────────────────────────────────────────────────
	eng := engine.NewEngine(g.cfg.StepInterval(), func() {
		sim.Step()
	})
	if run {
		eng.Start()
	}

	taskClient := tasks.NewClient(g.cfg.Tasks.BaseURL, g.cfg.Tasks.Token)
	if !taskClient.Enabled() {
		slog.Warn("no CANVAS_TOKEN set, to-do list disabled")
	}

	srv := &api.Server{
		Sim:      sim,
		Eng:      eng,
		Tracker:  tracker,
		Tasks:    taskClient,
		DB:       db,
		Listen:   g.cfg.Listen,
		AdminKey: g.cfg.AdminKey,
	}

	saved := make(chan struct{})
	go func() {
		defer close(saved)
		persistLoop(ctx, db, sim, tracker, saveInterval)
	}()

	fmt.Printf("\nmicrocity is up: day %d, %s residents.\n", sim.Day(), humanize.Comma(int64(sim.Stats().Population)))
	fmt.Printf("API: http://localhost%s/api/v1/status\n", g.cfg.Listen)

	serveErr := srv.ListenAndServe(ctx)
	stop()
	eng.Stop()
	<-saved

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveCityState(sim, tracker.Fields()); err != nil {
		slog.Error("final save failed", "error", err)
	}
	return serveErr
}

// persistLoop saves the city whenever it has changed since the last save,
// at most once per interval, and completes focus sessions that ran out.
func persistLoop(ctx context.Context, db *persistence.DB, sim *engine.Simulation, tracker *progress.Tracker, every time.Duration) {
	subID, updates := sim.Subscribe()
	defer sim.Unsubscribe(subID)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			dirty = true
		case <-ticker.C:
			tracker.Poll()
			if !dirty {
				continue
			}
			if err := db.SaveCityState(sim, tracker.Fields()); err != nil {
				slog.Error("autosave failed", "error", err)
				continue
			}
			dirty = false
		}
	}
}
