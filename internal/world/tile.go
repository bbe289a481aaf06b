// Package world provides the fixed-size zoning grid, tile kinds and the
// read-only neighbourhood queries used by growth rules and stat aggregation.
package world

import "strings"

// Size is the edge length of the square city grid.
const Size = 30

// MaxLevel is the highest development level a zone tile can reach.
const MaxLevel = 3

// Kind is the type of a single grid tile.
type Kind uint8

const (
	Empty       Kind = iota // Undeveloped ground
	Road                    // Gives adjacent zones access
	Residential             // Houses population
	Commercial              // Provides jobs, grows with nearby population
	Industrial              // Provides jobs, pollutes
	Park                    // Amenity
	Plaza                   // Amenity (extended set)
	School                  // Amenity (extended set)

	kindCount
)

// Kinds lists every tile kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Empty; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// IsZone reports whether the kind carries a development level.
func (k Kind) IsZone() bool {
	switch k {
	case Residential, Commercial, Industrial:
		return true
	case Empty, Road, Park, Plaza, School:
		return false
	default:
		return false
	}
}

// IsAmenity reports whether the kind is a happiness/cleanse amenity.
func (k Kind) IsAmenity() bool {
	switch k {
	case Park, Plaza, School:
		return true
	case Empty, Road, Residential, Commercial, Industrial:
		return false
	default:
		return false
	}
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

// String returns the tool name used by the editing surface.
func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Road:
		return "road"
	case Residential:
		return "res"
	case Commercial:
		return "com"
	case Industrial:
		return "ind"
	case Park:
		return "park"
	case Plaza:
		return "plaza"
	case School:
		return "school"
	default:
		return "unknown"
	}
}

// Label returns a human-readable name.
func (k Kind) Label() string {
	switch k {
	case Empty:
		return "Bulldoze"
	case Road:
		return "Road"
	case Residential:
		return "Residential"
	case Commercial:
		return "Commercial"
	case Industrial:
		return "Industrial"
	case Park:
		return "Park"
	case Plaza:
		return "Plaza"
	case School:
		return "School"
	default:
		return "Unknown"
	}
}

// ParseTool maps a tool selector to a kind. Unknown selectors fall back to Road.
func ParseTool(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "empty", "bulldoze":
		return Empty
	case "road":
		return Road
	case "res", "residential":
		return Residential
	case "com", "commercial":
		return Commercial
	case "ind", "industrial":
		return Industrial
	case "park":
		return Park
	case "plaza":
		return Plaza
	case "school":
		return School
	default:
		return Road
	}
}

var (
	residentialCap = [MaxLevel + 1]int{0, 10, 25, 45}
	commercialCap  = [MaxLevel + 1]int{0, 8, 18, 30}
	industrialCap  = [MaxLevel + 1]int{0, 10, 22, 36}
)

// Capacity returns the population (residential) or jobs (commercial,
// industrial) a tile contributes at the given level. Non-zone kinds and
// out-of-range levels contribute nothing.
func Capacity(k Kind, level int) int {
	if level < 0 || level > MaxLevel {
		return 0
	}
	switch k {
	case Residential:
		return residentialCap[level]
	case Commercial:
		return commercialCap[level]
	case Industrial:
		return industrialCap[level]
	case Empty, Road, Park, Plaza, School:
		return 0
	default:
		return 0
	}
}

// Color returns the fill colour for a kind as a CSS hex string.
func Color(k Kind) string {
	switch k {
	case Empty:
		return "#0b1020"
	case Road:
		return "#6b7280"
	case Residential:
		return "#22c55e"
	case Commercial:
		return "#60a5fa"
	case Industrial:
		return "#f59e0b"
	case Park:
		return "#16a34a"
	case Plaza:
		return "#a855f7"
	case School:
		return "#f97316"
	default:
		return "#000000"
	}
}

// Glyph returns the single-character map symbol for a kind.
func Glyph(k Kind) byte {
	switch k {
	case Empty:
		return '.'
	case Road:
		return '#'
	case Residential:
		return 'r'
	case Commercial:
		return 'c'
	case Industrial:
		return 'i'
	case Park:
		return 'p'
	case Plaza:
		return 'z'
	case School:
		return 's'
	default:
		return '?'
	}
}
