// Editing surface: paint and bulldoze requests from the input layer.
package engine

import (
	"log/slog"

	"github.com/talgya/microcity/internal/world"
)

// EditResult reports what one paint request did. Rejections are not errors.
type EditResult struct {
	Changed      int     `json:"changed"`
	Unchanged    int     `json:"unchanged"`
	OutOfBounds  int     `json:"out_of_bounds"`
	Unaffordable int     `json:"unaffordable"`
	Charged      float64 `json:"charged,omitempty"`
	Refunded     float64 `json:"refunded,omitempty"`
	Locked       bool    `json:"locked,omitempty"`     // tool not unlocked at the player's level
	Disallowed   bool    `json:"disallowed,omitempty"` // kind not part of the active profile
	Stats        Stats   `json:"stats"`
	Money        float64 `json:"money,omitempty"`
}

// Paint sets kind k on the cell at c, or on the 3×3 block centred on c when
// brush is set. Each cell is handled independently: unchanged cells are
// skipped, out-of-bounds cells are ignored, and with the ledger active each
// construction is charged (or refused when unaffordable) and each bulldoze
// refunded. Stats are recomputed once for the whole batch.
func (s *Simulation) Paint(c world.Coord, k world.Kind, brush bool) EditResult {
	if !k.Valid() {
		k = world.Road
	}

	s.mu.Lock()
	var res EditResult
	switch {
	case !s.profile.Amenities.Allows(k):
		res.Disallowed = true
	case s.profile.ToolUnlocks && !s.progress.Unlocked(k):
		res.Locked = true
	case brush:
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				s.paintOneLocked(world.Coord{Row: c.Row + dr, Col: c.Col + dc}, k, &res)
			}
		}
	default:
		s.paintOneLocked(c, k, &res)
	}

	s.stats = Recompute(s.grid, s.profile)
	res.Stats = s.stats
	if s.ledger != nil {
		res.Money = s.ledger.Money
	}
	s.mu.Unlock()

	if res.Locked || res.Disallowed || res.Unaffordable > 0 {
		slog.Debug("paint rejected",
			"row", c.Row, "col", c.Col, "kind", k.String(),
			"locked", res.Locked, "disallowed", res.Disallowed, "unaffordable", res.Unaffordable)
	}
	if res.Changed > 0 {
		s.publish("edit")
	}
	return res
}

func (s *Simulation) paintOneLocked(c world.Coord, k world.Kind, res *EditResult) {
	if !c.InBounds() {
		res.OutOfBounds++
		return
	}
	prev := s.grid.Kind(c)
	if prev == k {
		res.Unchanged++
		return
	}

	if s.ledger != nil {
		if k == world.Empty {
			res.Refunded += s.ledger.Refund()
		} else {
			cost, ok := s.ledger.Charge(k)
			if !ok {
				res.Unaffordable++
				return
			}
			res.Charged += cost
		}
	}

	s.grid.Set(c, k)
	res.Changed++
}
