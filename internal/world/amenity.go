package world

// AmenityWeight configures one amenity kind.
type AmenityWeight struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Bonus   float64 `yaml:"bonus" json:"bonus"`     // local happiness base, divided by distance
	Cleanse float64 `yaml:"cleanse" json:"cleanse"` // local cleanse base, divided by distance
	Count   float64 `yaml:"count" json:"count"`     // weight in the city-wide amenity count
}

// AmenitySet holds the weights of every amenity kind. Disabled kinds are
// ignored by the scorer and the stats pass, and cannot be painted.
type AmenitySet struct {
	Park   AmenityWeight `yaml:"park" json:"park"`
	Plaza  AmenityWeight `yaml:"plaza" json:"plaza"`
	School AmenityWeight `yaml:"school" json:"school"`
}

// ParkOnlyAmenities is the classic amenity set.
func ParkOnlyAmenities() AmenitySet {
	return AmenitySet{
		Park: AmenityWeight{Enabled: true, Bonus: 3, Cleanse: 2, Count: 1},
	}
}

// ExtendedAmenities enables parks, plazas and schools.
func ExtendedAmenities() AmenitySet {
	return AmenitySet{
		Park:   AmenityWeight{Enabled: true, Bonus: 3, Cleanse: 2, Count: 1},
		Plaza:  AmenityWeight{Enabled: true, Bonus: 2, Cleanse: 1.5, Count: 0.8},
		School: AmenityWeight{Enabled: true, Bonus: 4, Cleanse: 2.5, Count: 1.2},
	}
}

// Lookup returns the weight for k if it is an enabled amenity.
func (s AmenitySet) Lookup(k Kind) (AmenityWeight, bool) {
	var w AmenityWeight
	switch k {
	case Park:
		w = s.Park
	case Plaza:
		w = s.Plaza
	case School:
		w = s.School
	case Empty, Road, Residential, Commercial, Industrial:
		return w, false
	default:
		return w, false
	}
	return w, w.Enabled
}

// Allows reports whether k may be painted under this amenity set. Zone,
// road and empty kinds are always allowed.
func (s AmenitySet) Allows(k Kind) bool {
	if !k.Valid() {
		return false
	}
	if !k.IsAmenity() {
		return true
	}
	_, ok := s.Lookup(k)
	return ok
}
