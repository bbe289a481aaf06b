package engine

import (
	"strings"

	"github.com/talgya/microcity/internal/world"
)

// Profile names.
const (
	ProfileClassic  = "classic"
	ProfileExtended = "extended"
)

// Profile parameterises the one engine over the two rule sets: which
// amenities exist and how they weigh, whether the money ledger runs, and
// whether player progress scales growth and gates tools.
type Profile struct {
	Name string `json:"name"`

	Amenities world.AmenitySet `json:"amenities"`

	// CleanseFactor multiplies the weighted city-wide amenity count before
	// it is subtracted from pollution.
	CleanseFactor float64 `json:"cleanse_factor"`
	// AmenityHappiness is the happiness per weighted amenity, capped at 20.
	AmenityHappiness float64 `json:"amenity_happiness"`

	Economy     bool `json:"economy"`
	GrowthBonus bool `json:"growth_bonus"`
	ToolUnlocks bool `json:"tool_unlocks"`
}

// ClassicProfile is the park-only rule set with the money ledger.
func ClassicProfile() Profile {
	return Profile{
		Name:             ProfileClassic,
		Amenities:        world.ParkOnlyAmenities(),
		CleanseFactor:    1.2,
		AmenityHappiness: 0.25,
		Economy:          true,
	}
}

// ExtendedProfile adds plazas and schools and lets player progress drive
// growth and tool unlocks. No money ledger.
func ExtendedProfile() Profile {
	return Profile{
		Name:             ProfileExtended,
		Amenities:        world.ExtendedAmenities(),
		CleanseFactor:    1.1,
		AmenityHappiness: 0.3,
		GrowthBonus:      true,
		ToolUnlocks:      true,
	}
}

// ProfileByName returns the named profile, or false if unknown.
func ProfileByName(name string) (Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileClassic, "":
		return ClassicProfile(), true
	case ProfileExtended:
		return ExtendedProfile(), true
	default:
		return Profile{}, false
	}
}
