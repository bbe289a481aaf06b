package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/microcity/internal/economy"
	"github.com/talgya/microcity/internal/entropy"
	"github.com/talgya/microcity/internal/progress"
	"github.com/talgya/microcity/internal/world"
)

func newTestSim(p Profile, draws ...float64) (*Simulation, *entropy.Sequence) {
	rng := entropy.NewSequence(draws...)
	return NewSimulation(Options{Profile: p, Economy: economy.DefaultConfig(), Rand: rng}), rng
}

func TestNewSimulation(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	assert.Equal(t, Stats{Happiness: 70}, sim.Stats())
	assert.Equal(t, 0, sim.Day())
	money, ok := sim.Money()
	assert.True(t, ok)
	assert.Equal(t, 5000.0, money)
	assert.Equal(t, 1.0, sim.GrowthBonus())

	ext, _ := newTestSim(ExtendedProfile())
	_, ok = ext.Money()
	assert.False(t, ok)
}

func TestStepEmptyCityLedger(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	rep := sim.Step()

	// Empty grid: happiness 70, so income is -40 upkeep and +20 above the pivot.
	assert.Equal(t, 1, rep.Day)
	assert.InDelta(t, -20.0, rep.Income, 1e-9)
	assert.InDelta(t, 4980.0, rep.Money, 1e-9)
	assert.False(t, rep.Distress)
	assert.Equal(t, 1, sim.Day())
}

func TestStepWithoutLedger(t *testing.T) {
	sim, _ := newTestSim(ExtendedProfile())
	rep := sim.Step()
	assert.Zero(t, rep.Income)
	assert.Zero(t, rep.Money)
}

func TestStepUsesPreviousStats(t *testing.T) {
	sim, rng := newTestSim(ClassicProfile(), 0)
	sim.Paint(world.Coord{Row: 5, Col: 5}, world.Road, false)
	sim.Paint(world.Coord{Row: 5, Col: 6}, world.Industrial, false)

	rep := sim.Step()
	assert.Equal(t, 1, rep.Grew)
	_, lvl := sim.Cell(world.Coord{Row: 5, Col: 6})
	assert.Equal(t, 1, lvl)
	assert.Equal(t, 10, rep.Stats.Jobs)
	assert.Equal(t, rep.Stats, sim.Stats())
	assert.Equal(t, 1, rng.Used())
}

func TestStepDistress(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile(), 0.9, 0.9, 0.1)

	g := world.NewGrid()
	g.Set(world.Coord{Row: 2, Col: 2}, world.Road)
	g.Set(world.Coord{Row: 2, Col: 3}, world.Residential)
	g.SetLevel(world.Coord{Row: 2, Col: 3}, 2)
	sim.Restore(State{Grid: g, Economy: true, Money: -1000})

	rep := sim.Step()
	require.True(t, rep.Distress)
	assert.Equal(t, 1, rep.DistressLost)
	_, lvl := sim.Cell(world.Coord{Row: 2, Col: 3})
	assert.Equal(t, 1, lvl)

	// 25 residents, one road, no jobs: happiness 39.895.
	income := 25*0.35 - (40 + 0.15*1.15) + (39.895 - 50)
	assert.InDelta(t, income, rep.Income, 1e-9)
	assert.InDelta(t, -1000+income+150, rep.Money, 1e-9)
	assert.Equal(t, 10, rep.Stats.Population, "stats recomputed after the distress pass")
	assert.Equal(t, rep.Stats, sim.Stats())
}

func TestReset(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile(), 0)
	sim.Paint(world.Coord{Row: 10, Col: 10}, world.Road, true)
	sim.Paint(world.Coord{Row: 12, Col: 12}, world.Residential, false)
	for i := 0; i < 3; i++ {
		sim.Step()
	}
	require.NotZero(t, sim.Day())

	sim.Reset()

	st := sim.Snapshot()
	st.Grid.Each(func(c world.Coord, k world.Kind, lvl int) {
		assert.Equal(t, world.Empty, k)
		assert.Zero(t, lvl)
	})
	assert.Equal(t, 0, sim.Day())
	money, _ := sim.Money()
	assert.Equal(t, 5000.0, money)
	assert.Equal(t, Stats{Happiness: 70}, sim.Stats())
}

func TestSnapshotRestore(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile(), 0)
	sim.Paint(world.Coord{Row: 3, Col: 3}, world.Road, false)
	sim.Paint(world.Coord{Row: 3, Col: 4}, world.Residential, false)
	sim.Step()

	st := sim.Snapshot()
	assert.Equal(t, ProfileClassic, st.Profile)
	assert.True(t, st.Economy)

	other, _ := newTestSim(ClassicProfile())
	other.Restore(st)
	assert.Equal(t, sim.Day(), other.Day())
	assert.Equal(t, sim.Stats(), other.Stats())
	m1, _ := sim.Money()
	m2, _ := other.Money()
	assert.Equal(t, m1, m2)

	// The snapshot is a copy.
	st.Grid.Set(world.Coord{Row: 0, Col: 0}, world.Park)
	k, _ := sim.Cell(world.Coord{Row: 0, Col: 0})
	assert.Equal(t, world.Empty, k)
}

func TestApplyProgress(t *testing.T) {
	p := progress.Progress{Level: 5, XP: 50, TotalXP: 450}

	classic, _ := newTestSim(ClassicProfile())
	classic.ApplyProgress(p)
	assert.Equal(t, 1.0, classic.GrowthBonus())

	ext, _ := newTestSim(ExtendedProfile())
	ext.ApplyProgress(p)
	assert.InDelta(t, 1+5*0.03+0.5*0.05, ext.GrowthBonus(), 1e-9)

	ext.ApplyProgress(progress.Progress{Level: 40, XP: 100})
	assert.Equal(t, progress.MaxGrowthBonus, ext.GrowthBonus())
}

func TestEvents(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	sim.Step()
	sim.Step()

	events := sim.Events(0)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(2), events[1].Seq)
	assert.Equal(t, "step", events[1].Category)
	assert.Len(t, sim.Events(1), 1)
}

func TestResumeEventsKeepsHistory(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	history := []Event{
		{Seq: 99, Day: 7, Description: "day 7: +0 -0", Category: "step"},
		{Seq: 100, Day: 8, Description: "day 8: +0 -0", Category: "step"},
	}
	sim.ResumeEvents(100, history)
	history[0].Seq = 1 // the log holds its own copy

	sim.Step()
	events := sim.Events(0)
	require.Len(t, events, 3)
	assert.Equal(t, []uint64{99, 100, 101}, []uint64{events[0].Seq, events[1].Seq, events[2].Seq})
	assert.Equal(t, 1, events[2].Day)
}

func TestResumeEventsNeverRewinds(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	sim.Step()
	sim.Step()
	sim.ResumeEvents(1, nil)
	sim.Step()

	events := sim.Events(0)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{events[0].Seq, events[1].Seq, events[2].Seq})
}

func TestEventLogBounded(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	for i := 0; i < maxEvents+25; i++ {
		sim.Step()
	}
	assert.Len(t, sim.Events(0), maxEvents)
}

func TestSubscribe(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	id, ch := sim.Subscribe()

	sim.Step()
	select {
	case u := <-ch:
		assert.Equal(t, "step", u.Kind)
		assert.Equal(t, 1, u.Day)
		require.NotNil(t, u.Money)
		assert.InDelta(t, 4980.0, *u.Money, 1e-9)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	sim.Unsubscribe(id)
	_, ok := <-ch
	assert.False(t, ok)
	sim.Unsubscribe(id) // idempotent
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	_, _ = sim.Subscribe()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			sim.Step()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("step blocked on a full subscriber")
	}
}

func TestSeedGeneratesTown(t *testing.T) {
	sim, _ := newTestSim(ExtendedProfile())
	cfg := world.DefaultTownConfig()
	cfg.Seed = 11
	sim.Seed(cfg)

	st := sim.Snapshot()
	assert.Positive(t, st.Grid.Count(world.Road))
	assert.Equal(t, 0, st.Day)
}

func TestProfileByName(t *testing.T) {
	p, ok := ProfileByName("")
	assert.True(t, ok)
	assert.Equal(t, ProfileClassic, p.Name)

	p, ok = ProfileByName(" Extended ")
	assert.True(t, ok)
	assert.True(t, p.ToolUnlocks)
	assert.False(t, p.Economy)

	_, ok = ProfileByName("sandbox")
	assert.False(t, ok)
}
