// Package engine runs the zoning simulation: the city state controller,
// stats aggregation, growth/decay steps, the editing surface and the
// auto-step loop.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/microcity/internal/economy"
	"github.com/talgya/microcity/internal/entropy"
	"github.com/talgya/microcity/internal/progress"
	"github.com/talgya/microcity/internal/world"
)

const maxEvents = 200

// Simulation holds the complete city state. Every mutation (edit, step,
// reset, progress change) is serialised behind one mutex and followed by a
// full stats recompute inside the same critical section.
type Simulation struct {
	mu sync.Mutex

	grid    *world.Grid
	stats   Stats
	day     int
	ledger  *economy.Ledger // nil when the profile has no economy
	profile Profile
	rng     entropy.Source

	growthBonus float64
	progress    progress.Progress

	events   []Event
	eventSeq uint64

	subMu       sync.Mutex
	subscribers map[string]chan Update
}

// Event is a notable occurrence in the city.
type Event struct {
	Seq         uint64 `json:"seq" db:"seq"`
	Day         int    `json:"day"`
	Description string `json:"description"`
	Category    string `json:"category"` // "step", "edit", "economy", "reset", "progress"
}

// Update is pushed to subscribers after every state change.
type Update struct {
	Kind  string   `json:"kind"` // "step", "edit", "reset", "progress", "restore"
	Day   int      `json:"day"`
	Stats Stats    `json:"stats"`
	Money *float64 `json:"money,omitempty"`
}

// Options configures a new simulation.
type Options struct {
	Profile Profile
	Economy economy.Config
	Rand    entropy.Source // nil = time-seeded PRNG
}

// NewSimulation creates an empty city.
func NewSimulation(opts Options) *Simulation {
	rng := opts.Rand
	if rng == nil {
		rng = entropy.NewSeeded(0)
	}
	s := &Simulation{
		grid:        world.NewGrid(),
		profile:     opts.Profile,
		rng:         rng,
		growthBonus: 1,
		progress:    progress.New(),
		subscribers: make(map[string]chan Update),
	}
	if opts.Profile.Economy {
		s.ledger = economy.NewLedger(opts.Economy)
	}
	s.stats = Recompute(s.grid, s.profile)
	return s
}

// Profile returns the active rule set.
func (s *Simulation) Profile() Profile {
	return s.profile
}

// Stats returns the most recent aggregate.
func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Day returns the number of steps since the last reset.
func (s *Simulation) Day() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// Money returns the balance and whether the ledger is active.
func (s *Simulation) Money() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledger == nil {
		return 0, false
	}
	return s.ledger.Money, true
}

// GrowthBonus returns the multiplier applied to growth this step.
func (s *Simulation) GrowthBonus() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.growthBonus
}

// Cell returns the kind and level at c.
func (s *Simulation) Cell(c world.Coord) (world.Kind, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Get(c)
}

// ApplyProgress installs new player progress. With the growth-bonus profile
// it rescales growth; otherwise the bonus stays fixed at 1.
func (s *Simulation) ApplyProgress(p progress.Progress) {
	s.mu.Lock()
	s.progress = p
	s.growthBonus = 1
	if s.profile.GrowthBonus {
		s.growthBonus = sanitizeBonus(p.GrowthBonus())
	}
	s.stats = Recompute(s.grid, s.profile)
	s.logEventLocked("progress", fmt.Sprintf("level %d, xp %d", p.Level, p.XP))
	s.mu.Unlock()

	s.publish("progress")
}

// StepReport summarises one simulated day.
type StepReport struct {
	Day          int     `json:"day"`
	Grew         int     `json:"grew"`
	Decayed      int     `json:"decayed"`
	Stats        Stats   `json:"stats"`
	Money        float64 `json:"money,omitempty"`
	Income       float64 `json:"income,omitempty"`
	Distress     bool    `json:"distress,omitempty"`
	DistressLost int     `json:"distress_lost,omitempty"`
}

// Step advances the city by one day: growth/decay from the previous stats,
// a full recompute, then the ledger update when present.
func (s *Simulation) Step() StepReport {
	s.mu.Lock()
	rep := s.stepLocked()
	s.mu.Unlock()

	slog.Info("daily report",
		"day", rep.Day,
		"population", humanize.Comma(int64(rep.Stats.Population)),
		"jobs", humanize.Comma(int64(rep.Stats.Jobs)),
		"pollution", rep.Stats.DisplayPollution(),
		"happiness", rep.Stats.DisplayHappiness(),
		"grew", rep.Grew,
		"decayed", rep.Decayed,
	)
	if rep.Distress {
		slog.Warn("city in distress", "day", rep.Day, "downgraded", rep.DistressLost, "money", humanize.Commaf(math.Round(rep.Money)))
	}

	s.publish("step")
	return rep
}

func (s *Simulation) stepLocked() StepReport {
	s.day++
	prev := s.stats

	res := grow(s.grid, prev, s.growthBonus, s.profile.Amenities, s.rng)
	s.stats = Recompute(s.grid, s.profile)

	rep := StepReport{Day: s.day, Grew: res.Grew, Decayed: res.Decayed}
	if s.ledger != nil {
		rep.Income = s.ledger.Collect(s.stats.Population, s.stats.Jobs, s.stats.Pollution, s.stats.Happiness)
		if s.ledger.InDistress() {
			rep.Distress = true
			rep.DistressLost = s.ledger.ApplyDistress(s.grid, s.rng)
			s.stats = Recompute(s.grid, s.profile)
			s.logEventLocked("economy", fmt.Sprintf("distress: %d tiles downgraded, bailout credited", rep.DistressLost))
		}
		rep.Money = s.ledger.Money
	}
	rep.Stats = s.stats
	s.logEventLocked("step", fmt.Sprintf("day %d: +%d -%d", s.day, res.Grew, res.Decayed))
	return rep
}

// Reset empties the grid, zeroes the day counter and restores the starting
// balance, in one call.
func (s *Simulation) Reset() {
	s.mu.Lock()
	s.grid.Reset()
	s.day = 0
	if s.ledger != nil {
		s.ledger.Reset()
	}
	s.stats = Recompute(s.grid, s.profile)
	s.events = nil
	s.logEventLocked("reset", "city reset")
	s.mu.Unlock()

	slog.Info("city reset")
	s.publish("reset")
}

// Seed replaces the grid with a generated starter town.
func (s *Simulation) Seed(cfg world.TownConfig) {
	s.mu.Lock()
	cfg.Amenities = s.profile.Amenities
	world.GenerateTown(s.grid, cfg)
	s.stats = Recompute(s.grid, s.profile)
	s.logEventLocked("edit", "starter town generated")
	s.mu.Unlock()

	s.publish("edit")
}

// State is a consistent copy of everything the renderer and the
// persistence layer need.
type State struct {
	Profile  string
	Grid     *world.Grid
	Stats    Stats
	Day      int
	Money    float64
	Economy  bool
	Progress progress.Progress
}

// Snapshot returns a consistent copy of the city.
func (s *Simulation) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Profile:  s.profile.Name,
		Grid:     s.grid.Clone(),
		Stats:    s.stats,
		Day:      s.day,
		Progress: s.progress,
	}
	if s.ledger != nil {
		st.Economy = true
		st.Money = s.ledger.Money
	}
	return st
}

// Restore loads grid, day and balance from a saved state and recomputes.
func (s *Simulation) Restore(st State) {
	s.mu.Lock()
	if st.Grid != nil {
		s.grid = st.Grid.Clone()
	}
	if st.Day >= 0 {
		s.day = st.Day
	}
	if s.ledger != nil && st.Economy {
		s.ledger.Money = st.Money
	}
	s.stats = Recompute(s.grid, s.profile)
	s.logEventLocked("reset", fmt.Sprintf("city restored at day %d", s.day))
	s.mu.Unlock()

	s.publish("restore")
}

// Events returns a copy of the most recent events, oldest first.
func (s *Simulation) Events(limit int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	out := make([]Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out
}

// ResumeEvents continues event numbering after seq and puts history (oldest
// first, already stored) in front of the in-memory log. Call it before the
// simulation logs anything: events already in memory keep their numbers.
func (s *Simulation) ResumeEvents(seq uint64, history []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventSeq = max(s.eventSeq, seq)
	s.events = append(slices.Clone(history), s.events...)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

func (s *Simulation) logEventLocked(category, desc string) {
	s.eventSeq++
	s.events = append(s.events, Event{Seq: s.eventSeq, Day: s.day, Description: desc, Category: category})
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// Subscribe registers for change notifications. Slow subscribers miss
// updates rather than block the simulation.
func (s *Simulation) Subscribe() (string, <-chan Update) {
	id := uuid.NewString()
	ch := make(chan Update, 16)
	s.subMu.Lock()
	s.subscribers[id] = ch
	s.subMu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Simulation) Unsubscribe(id string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subscribers[id]; ok {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Simulation) publish(kind string) {
	s.mu.Lock()
	u := Update{Kind: kind, Day: s.day, Stats: s.stats}
	if s.ledger != nil {
		m := s.ledger.Money
		u.Money = &m
	}
	s.mu.Unlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
}

func sanitizeBonus(b float64) float64 {
	if math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
		return 1
	}
	return b
}
