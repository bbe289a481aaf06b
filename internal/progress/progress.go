// Package progress tracks the player's level and experience, which feed the
// growth bonus applied to the simulation and gate the editing tools.
package progress

import (
	"math"
	"strconv"

	"github.com/talgya/microcity/internal/world"
)

// Flat key/value field names shared with the persistence layer.
const (
	FieldLevel   = "level"
	FieldXP      = "xp"
	FieldTotalXP = "totalXp"
)

// XPPerLevel is the experience needed to roll over into the next level.
const XPPerLevel = 100

// MaxGrowthBonus caps the growth multiplier.
const MaxGrowthBonus = 1.6

// Progress is the player's level state. The simulation only reads it.
type Progress struct {
	Level   int `json:"level"`
	XP      int `json:"xp"`
	TotalXP int `json:"total_xp"`
}

// New returns the starting progress: level 1, no experience.
func New() Progress {
	return Progress{Level: 1}
}

// FromFields reads progress from flat key/value fields. Missing, malformed or
// non-finite values fall back to level 1 and 0 xp. A missing total falls
// back to the current xp.
func FromFields(fields map[string]string) Progress {
	p := Progress{
		Level: int(sanitize(fields[FieldLevel], 1)),
		XP:    int(sanitize(fields[FieldXP], 0)),
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 {
		p.XP = 0
	}
	p.TotalXP = int(sanitize(fields[FieldTotalXP], float64(p.XP)))
	if p.TotalXP < p.XP {
		p.TotalXP = p.XP
	}
	return p
}

// Fields renders progress as flat key/value fields.
func (p Progress) Fields() map[string]string {
	return map[string]string{
		FieldLevel:   strconv.Itoa(p.Level),
		FieldXP:      strconv.Itoa(p.XP),
		FieldTotalXP: strconv.Itoa(p.TotalXP),
	}
}

// GrowthBonus is min(1.6, 1 + level×0.03 + min(1, xp/100)×0.05).
func (p Progress) GrowthBonus() float64 {
	xpProgress := math.Min(1, float64(p.XP)/XPPerLevel)
	return math.Min(MaxGrowthBonus, 1+float64(p.Level)*0.03+xpProgress*0.05)
}

// Gain adds experience, rolling every full XPPerLevel into a level. Returns
// the number of levels gained. Non-positive amounts are ignored.
func (p *Progress) Gain(amount int) int {
	if amount <= 0 {
		return 0
	}
	p.XP += amount
	p.TotalXP += amount
	gained := 0
	for p.XP >= XPPerLevel {
		p.XP -= XPPerLevel
		p.Level++
		gained++
	}
	return gained
}

// UnlockLevel returns the level at which a tool becomes available.
func UnlockLevel(k world.Kind) int {
	switch k {
	case world.Empty, world.Road, world.Residential:
		return 1
	case world.Park:
		return 2
	case world.Commercial, world.Plaza:
		return 3
	case world.Industrial:
		return 4
	case world.School:
		return 5
	default:
		return 1
	}
}

// Unlocked reports whether tool k is available at this level.
func (p Progress) Unlocked(k world.Kind) bool {
	return p.Level >= UnlockLevel(k)
}

// LockedTool describes a tool the player cannot use yet.
type LockedTool struct {
	Kind  world.Kind `json:"kind"`
	Name  string     `json:"name"`
	Level int        `json:"level"`
}

// Locked lists the tools still locked at this level, in kind order.
func (p Progress) Locked() []LockedTool {
	var out []LockedTool
	for _, k := range world.Kinds() {
		if !p.Unlocked(k) {
			out = append(out, LockedTool{Kind: k, Name: k.Label(), Level: UnlockLevel(k)})
		}
	}
	return out
}

func sanitize(raw string, def float64) float64 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
