// Starter-town generation using layered simplex noise.
// Lays a road lattice over the grid and zones the blocks between roads from
// two noise layers (desirability and industry).
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// TownConfig holds starter-town generation parameters.
type TownConfig struct {
	Seed        int64      // Noise seed (0 = random)
	BlockSize   int        // Distance between road lines
	Margin      int        // Untouched border around the town
	ZoneDensity float64    // Fraction of block cells that get zoned (0.0–1.0)
	Amenities   AmenitySet // Amenity kinds that may be placed
}

// DefaultTownConfig returns a modest town covering the grid centre.
func DefaultTownConfig() TownConfig {
	return TownConfig{
		BlockSize:   5,
		Margin:      4,
		ZoneDensity: 0.6,
		Amenities:   ParkOnlyAmenities(),
	}
}

// GenerateTown resets g and fills it with a starter layout. All zones start
// undeveloped; the growth engine does the rest.
func GenerateTown(g *Grid, cfg TownConfig) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if cfg.BlockSize < 2 {
		cfg.BlockSize = 2
	}

	desire := opensimplex.NewNormalized(seed)
	industry := opensimplex.NewNormalized(seed + 1)
	scatter := opensimplex.NewNormalized(seed + 2)

	g.Reset()
	lo, hi := cfg.Margin, Size-1-cfg.Margin
	if lo >= hi {
		return
	}

	// Road lattice.
	for r := lo; r <= hi; r++ {
		for c := lo; c <= hi; c++ {
			if (r-lo)%cfg.BlockSize == 0 || (c-lo)%cfg.BlockSize == 0 {
				g.Set(Coord{Row: r, Col: c}, Road)
			}
		}
	}

	// Zone the blocks.
	for r := lo; r <= hi; r++ {
		for c := lo; c <= hi; c++ {
			coord := Coord{Row: r, Col: c}
			if g.Kind(coord) == Road {
				continue
			}
			x, y := float64(c), float64(r)
			if octaveNoise(scatter, x, y, 2, 0.35, 0.5) > cfg.ZoneDensity {
				continue
			}
			g.Set(coord, pickKind(
				octaveNoise(desire, x, y, 3, 0.12, 0.5),
				octaveNoise(industry, x, y, 2, 0.08, 0.5),
				cfg.Amenities,
			))
		}
	}
}

// pickKind maps the two noise samples to a tile kind.
func pickKind(desire, industry float64, amenities AmenitySet) Kind {
	switch {
	case industry > 0.68:
		return Industrial
	case desire > 0.72:
		if amenities.School.Enabled && industry < 0.3 {
			return School
		}
		if amenities.Plaza.Enabled && industry > 0.5 {
			return Plaza
		}
		if amenities.Park.Enabled {
			return Park
		}
		return Residential
	case desire > 0.55:
		return Commercial
	default:
		return Residential
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// KindCounts returns a summary of kind distribution.
func KindCounts(g *Grid) map[Kind]int {
	counts := make(map[Kind]int)
	g.Each(func(_ Coord, k Kind, _ int) {
		counts[k]++
	})
	return counts
}
