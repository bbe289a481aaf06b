// Growth and decay of zoned tiles.
// Each zoned tile draws once for growth and, only if that did not fire, once
// for decay. Tiles without road access only ever decay.
package engine

import (
	"math"

	"github.com/talgya/microcity/internal/entropy"
	"github.com/talgya/microcity/internal/world"
)

// IsolatedDecayChance is the per-step decay probability of a developed zone
// with no adjacent road.
const IsolatedDecayChance = 0.45

// Transition is the pair of chances computed for one tile.
type Transition struct {
	Grow  float64
	Decay float64
}

// Chances computes the growth and decay probabilities for a road-connected
// zone tile at c, from the previous step's stats and the growth bonus.
// Non-zone kinds never transition.
func Chances(g *world.Grid, c world.Coord, k world.Kind, prev Stats, bonus float64, amenities world.AmenitySet) Transition {
	switch k {
	case world.Residential:
		inf := world.AmenityInfluence(g, c, amenities)
		want := world.NearbyJobsScore(g, c) + inf.Bonus*2
		return Transition{
			Grow:  math.Min(0.55, 0.08+want/80) * (prev.Happiness / 70) * bonus,
			Decay: math.Max(0, 0.12-prev.Happiness/140) * (2 - bonus),
		}
	case world.Commercial:
		inf := world.AmenityInfluence(g, c, amenities)
		nearby := float64(world.NearbyPopulation(g, c))
		return Transition{
			Grow: math.Min(0.5, 0.06+nearby/250) *
				(prev.Happiness / 80) *
				(1 + inf.Bonus/30) *
				bonus,
			Decay: math.Max(0, 0.10-prev.Happiness/160) * (2 - bonus),
		}
	case world.Industrial:
		inf := world.AmenityInfluence(g, c, amenities)
		unmet := float64(prev.Unemployed())
		return Transition{
			Grow: math.Min(0.45, 0.08+unmet/400) *
				(1 + inf.Bonus/40) *
				bonus,
			Decay: (0.07 + math.Min(0.12, prev.Pollution/250)) * (2 - bonus),
		}
	case world.Empty, world.Road, world.Park, world.Plaza, world.School:
		return Transition{}
	default:
		return Transition{}
	}
}

// growthResult counts level changes in one pass.
type growthResult struct {
	Grew    int
	Decayed int
}

// grow runs the growth/decay pass over every cell in row-major order,
// mutating levels in place. Draw order: isolated developed tiles draw once;
// connected tiles draw for growth when below MaxLevel, then for decay when
// growth did not fire and the level is above 0.
func grow(g *world.Grid, prev Stats, bonus float64, amenities world.AmenitySet, rng entropy.Source) growthResult {
	var res growthResult
	g.Each(func(c world.Coord, k world.Kind, lvl int) {
		if !k.IsZone() {
			return
		}

		if !world.HasAdjacentRoad(g, c) {
			if lvl > 0 && rng.Float64() < IsolatedDecayChance {
				g.SetLevel(c, lvl-1)
				res.Decayed++
			}
			return
		}

		t := Chances(g, c, k, prev, bonus, amenities)
		if lvl < world.MaxLevel && rng.Float64() < t.Grow {
			g.SetLevel(c, lvl+1)
			res.Grew++
		} else if lvl > 0 && rng.Float64() < t.Decay {
			g.SetLevel(c, lvl-1)
			res.Decayed++
		}
	})
	return res
}
