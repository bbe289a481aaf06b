package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/microcity/internal/economy"
	"github.com/talgya/microcity/internal/progress"
	"github.com/talgya/microcity/internal/world"
)

func TestPaintSingleCellCharges(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	c := world.Coord{Row: 0, Col: 0}

	res := sim.Paint(c, world.Residential, false)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, 20.0, res.Charged)
	assert.Equal(t, 4980.0, res.Money)

	res = sim.Paint(c, world.Residential, false)
	assert.Equal(t, 0, res.Changed)
	assert.Equal(t, 1, res.Unchanged)
	assert.Zero(t, res.Charged)
	assert.Equal(t, 4980.0, res.Money)
}

func TestPaintBulldozeRefunds(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	c := world.Coord{Row: 7, Col: 7}
	sim.Paint(c, world.Industrial, false)

	res := sim.Paint(c, world.Empty, false)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, 5.0, res.Refunded)
	assert.Equal(t, 5000.0-40+5, res.Money)

	// Bulldozing empty ground is a no-op.
	res = sim.Paint(c, world.Empty, false)
	assert.Equal(t, 1, res.Unchanged)
	assert.Zero(t, res.Refunded)
}

func TestPaintBrushClipsAtEdge(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	res := sim.Paint(world.Coord{Row: 0, Col: 0}, world.Road, true)

	assert.Equal(t, 4, res.Changed)
	assert.Equal(t, 5, res.OutOfBounds)
	assert.Equal(t, 40.0, res.Charged)
	for _, c := range []world.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}} {
		k, _ := sim.Cell(c)
		assert.Equal(t, world.Road, k)
	}
	k, _ := sim.Cell(world.Coord{Row: 2, Col: 2})
	assert.Equal(t, world.Empty, k)
}

func TestPaintBrushMixedCells(t *testing.T) {
	sim, _ := newTestSim(ExtendedProfile())
	center := world.Coord{Row: 10, Col: 10}
	sim.Paint(world.Coord{Row: 9, Col: 9}, world.Road, false)

	res := sim.Paint(center, world.Road, true)
	assert.Equal(t, 8, res.Changed)
	assert.Equal(t, 1, res.Unchanged)
	assert.Zero(t, res.Charged, "no ledger, no charges")
}

func TestPaintUnaffordable(t *testing.T) {
	cfg := economy.DefaultConfig()
	cfg.StartingMoney = 25
	sim := NewSimulation(Options{Profile: ClassicProfile(), Economy: cfg})

	res := sim.Paint(world.Coord{Row: 5, Col: 5}, world.Residential, true)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, 8, res.Unaffordable)
	assert.Equal(t, 5.0, res.Money)

	// The first cell in row-major order was the one paid for.
	k, _ := sim.Cell(world.Coord{Row: 4, Col: 4})
	assert.Equal(t, world.Residential, k)
	assert.Equal(t, 1, sim.Snapshot().Grid.Count(world.Residential))
}

func TestPaintRejectsDisallowedAmenity(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	res := sim.Paint(world.Coord{Row: 3, Col: 3}, world.School, true)
	assert.True(t, res.Disallowed)
	assert.Zero(t, res.Changed)
	assert.Equal(t, 5000.0, res.Money)
	assert.Zero(t, sim.Snapshot().Grid.Count(world.School))
}

func TestPaintLockedTool(t *testing.T) {
	sim, _ := newTestSim(ExtendedProfile())
	c := world.Coord{Row: 3, Col: 3}

	res := sim.Paint(c, world.Commercial, false)
	assert.True(t, res.Locked)
	k, _ := sim.Cell(c)
	assert.Equal(t, world.Empty, k)

	sim.ApplyProgress(progress.Progress{Level: 3})
	res = sim.Paint(c, world.Commercial, false)
	assert.False(t, res.Locked)
	assert.Equal(t, 1, res.Changed)
}

func TestPaintClassicIgnoresUnlocks(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	res := sim.Paint(world.Coord{Row: 1, Col: 1}, world.Industrial, false)
	assert.False(t, res.Locked)
	assert.Equal(t, 1, res.Changed)
}

func TestPaintInvalidKindFallsBackToRoad(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	sim.Paint(world.Coord{Row: 1, Col: 1}, world.Kind(77), false)
	k, _ := sim.Cell(world.Coord{Row: 1, Col: 1})
	assert.Equal(t, world.Road, k)
}

func TestPaintResetsLevelAndRecomputes(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile(), 0)
	sim.Paint(world.Coord{Row: 5, Col: 5}, world.Road, false)
	sim.Paint(world.Coord{Row: 5, Col: 6}, world.Residential, false)
	sim.Step()
	_, lvl := sim.Cell(world.Coord{Row: 5, Col: 6})
	assert.Equal(t, 1, lvl)
	assert.Equal(t, 10, sim.Stats().Population)

	res := sim.Paint(world.Coord{Row: 5, Col: 6}, world.Commercial, false)
	_, lvl = sim.Cell(world.Coord{Row: 5, Col: 6})
	assert.Equal(t, 0, lvl)
	assert.Equal(t, 0, res.Stats.Population)
	assert.Equal(t, res.Stats, sim.Stats())
}

func TestPaintOutOfBoundsSingle(t *testing.T) {
	sim, _ := newTestSim(ClassicProfile())
	res := sim.Paint(world.Coord{Row: -1, Col: 40}, world.Road, false)
	assert.Equal(t, 1, res.OutOfBounds)
	assert.Zero(t, res.Changed)
	assert.Equal(t, 5000.0, res.Money)
}
