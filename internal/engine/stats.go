package engine

import (
	"math"

	"github.com/talgya/microcity/internal/world"
)

// Happiness formula terms.
const (
	BaseHappiness        = 40.0
	JobCoverageHappiness = 30.0
	MaxPollutionPenalty  = 35.0
	PollutionPenalty     = 0.7
	MaxAmenityHappiness  = 20.0

	IndustryPollution = 3.0  // per development level
	RoadPollution     = 0.15 // per road tile
)

// Stats is the city-wide aggregate, always recomputed from the grid as a
// whole. Pollution keeps its fractional part; only display rounds.
type Stats struct {
	Population int     `json:"population"`
	Jobs       int     `json:"jobs"`
	Pollution  float64 `json:"pollution"`
	Happiness  float64 `json:"happiness"`
}

// DisplayPollution rounds pollution for display.
func (s Stats) DisplayPollution() int {
	return int(math.Round(math.Max(0, s.Pollution)))
}

// DisplayHappiness rounds happiness for display.
func (s Stats) DisplayHappiness() int {
	return int(math.Round(clamp(s.Happiness, 0, 100)))
}

// Unemployed returns population without a job, never negative.
func (s Stats) Unemployed() int {
	return max(0, s.Population-s.Jobs)
}

// Recompute derives stats from the grid in a single pass.
func Recompute(g *world.Grid, p Profile) Stats {
	pop, jobs := 0, 0
	pol := 0.0
	amenities := 0.0

	g.Each(func(_ world.Coord, k world.Kind, lvl int) {
		switch k {
		case world.Residential:
			pop += world.Capacity(k, lvl)
		case world.Commercial:
			jobs += world.Capacity(k, lvl)
		case world.Industrial:
			jobs += world.Capacity(k, lvl)
			pol += IndustryPollution * float64(lvl)
		case world.Road:
			pol += RoadPollution
		case world.Park, world.Plaza, world.School:
			if w, ok := p.Amenities.Lookup(k); ok {
				amenities += w.Count
			}
		case world.Empty:
		}
	})

	pol = math.Max(0, pol-amenities*p.CleanseFactor)

	coverage := 1.0
	if pop > 0 {
		coverage = math.Min(1, float64(jobs)/float64(pop))
	}
	happy := BaseHappiness +
		coverage*JobCoverageHappiness -
		math.Min(MaxPollutionPenalty, pol*PollutionPenalty) +
		math.Min(MaxAmenityHappiness, amenities*p.AmenityHappiness)

	return Stats{
		Population: pop,
		Jobs:       jobs,
		Pollution:  pol,
		Happiness:  clamp(happy, 0, 100),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
