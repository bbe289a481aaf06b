package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/microcity/internal/engine"
	"github.com/talgya/microcity/internal/progress"
	"github.com/talgya/microcity/internal/render"
	"github.com/talgya/microcity/internal/skyline"
	"github.com/talgya/microcity/internal/tasks"
	"github.com/talgya/microcity/internal/world"
)

func simulateCmd(g *globals) *cobra.Command {
	var (
		days  int
		town  bool
		quiet bool
		save  bool
		out   string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the city headless for a number of days and print the result",
		RunE: func(_ *cobra.Command, _ []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			sim, err := g.newSimulation()
			if err != nil {
				return err
			}
			if town {
				cfg := world.DefaultTownConfig()
				cfg.Seed = g.cfg.Seed
				sim.Seed(cfg)
			}

			var rep engine.StepReport
			for i := 0; i < days; i++ {
				rep = sim.Step()
				if !quiet && rep.Day%10 == 0 {
					fmt.Println(summaryLine(rep))
				}
			}

			st := sim.Snapshot()
			fmt.Println(render.ASCII(st.Grid))
			fmt.Println(summaryLine(rep))

			if out != "" {
				if err := writePNG(out, st.Grid); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", out)
			}
			if save {
				db, err := g.openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				if _, err := db.SaveCity(st); err != nil {
					return fmt.Errorf("save city: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "days to simulate")
	cmd.Flags().BoolVar(&town, "town", true, "start from a generated starter town")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the final state")
	cmd.Flags().BoolVar(&save, "save", false, "store the result as the latest city snapshot")
	cmd.Flags().StringVarP(&out, "out", "o", "", "also write a PNG to this path")
	return cmd
}

func summaryLine(rep engine.StepReport) string {
	line := fmt.Sprintf("day %d: pop %s, jobs %s, pollution %d, happiness %d (+%d -%d)",
		rep.Day,
		humanize.Comma(int64(rep.Stats.Population)),
		humanize.Comma(int64(rep.Stats.Jobs)),
		rep.Stats.DisplayPollution(),
		rep.Stats.DisplayHappiness(),
		rep.Grew, rep.Decayed,
	)
	if rep.Money != 0 || rep.Income != 0 {
		line += fmt.Sprintf(", money $%s", humanize.Commaf(float64(int64(rep.Money))))
	}
	return line
}

func renderCmd(g *globals) *cobra.Command {
	var (
		format string
		out    string
		cell   int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the latest saved city as PNG or ASCII",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := g.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			st, ok, err := db.LoadLatestCity()
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no saved city")
			}

			switch strings.ToLower(format) {
			case "ascii":
				fmt.Println(render.ASCII(st.Grid))
				fmt.Println(render.Legend())
				return nil
			case "png":
				if out == "" || out == "-" {
					return render.PNG(os.Stdout, st.Grid, cell)
				}
				if err := writePNGCell(out, st.Grid, cell); err != nil {
					return err
				}
				fmt.Printf("wrote %s (day %d)\n", out, st.Day)
				return nil
			default:
				return fmt.Errorf("unknown format %q (use: png, ascii)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "ascii", "output format: png or ascii")
	cmd.Flags().StringVarP(&out, "out", "o", "", "PNG output path (default stdout)")
	cmd.Flags().IntVar(&cell, "cell", render.DefaultCell, "PNG pixels per tile")
	return cmd
}

func writePNG(path string, g *world.Grid) error {
	return writePNGCell(path, g, render.DefaultCell)
}

func writePNGCell(path string, g *world.Grid, cell int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.PNG(f, g, cell); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func skylineCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "skyline",
		Short: "Show the skyline stage earned by total experience",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := g.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			fields, err := db.LoadFields()
			if err != nil {
				return err
			}
			p := progress.FromFields(fields)
			printSkyline(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func printSkyline(w io.Writer, p progress.Progress) {
	v := skyline.Render(p.TotalXP)
	fmt.Fprintln(w, v.Art)
	fmt.Fprintln(w, v.Caption())
	fmt.Fprintf(w, "level %d, %d/%d xp (total %s), growth x%.2f\n",
		p.Level, p.XP, progress.XPPerLevel, humanize.Comma(int64(p.TotalXP)), p.GrowthBonus())
}

func tasksCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List the top upcoming to-do items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := tasks.NewClient(g.cfg.Tasks.BaseURL, g.cfg.Tasks.Token)
			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
			defer cancel()

			list, err := client.Todo(ctx)
			if err != nil {
				return fmt.Errorf("fetch to-do list: %w", err)
			}
			top := tasks.Top(list, limit)
			if len(top) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
				return nil
			}
			for _, t := range top {
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %-14s %4s pts  %s\n", t.Name, t.Due, humanize.Ftoa(t.Points), t.Course)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 3, "number of tasks to show")
	return cmd
}
