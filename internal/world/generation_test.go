package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTownDeterministic(t *testing.T) {
	cfg := DefaultTownConfig()
	cfg.Seed = 1234

	a, b := NewGrid(), NewGrid()
	GenerateTown(a, cfg)
	GenerateTown(b, cfg)
	assert.Equal(t, *a, *b)
}

func TestGenerateTownLayout(t *testing.T) {
	cfg := DefaultTownConfig()
	cfg.Seed = 99
	g := NewGrid()
	GenerateTown(g, cfg)

	counts := KindCounts(g)
	assert.Positive(t, counts[Road])
	assert.Zero(t, counts[Plaza])
	assert.Zero(t, counts[School])

	g.Each(func(c Coord, k Kind, level int) {
		assert.Zero(t, level, "starter tiles are undeveloped")
		inside := c.Row >= cfg.Margin && c.Row <= Size-1-cfg.Margin &&
			c.Col >= cfg.Margin && c.Col <= Size-1-cfg.Margin
		if !inside {
			assert.Equal(t, Empty, k, "margin cell %v", c)
		}
	})
}

func TestPickKindRespectsAmenitySet(t *testing.T) {
	assert.Equal(t, Residential, pickKind(0.9, 0.1, AmenitySet{}))
	assert.Equal(t, Park, pickKind(0.9, 0.1, ParkOnlyAmenities()))
	assert.Equal(t, School, pickKind(0.9, 0.1, ExtendedAmenities()))
	assert.Equal(t, Plaza, pickKind(0.9, 0.6, ExtendedAmenities()))
	assert.Equal(t, Industrial, pickKind(0.1, 0.9, ExtendedAmenities()))
	assert.Equal(t, Commercial, pickKind(0.6, 0.1, AmenitySet{}))
}
