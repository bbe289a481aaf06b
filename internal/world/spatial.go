package world

// Neighbourhood radii used by the scorer.
const (
	JobsRadius    = 3 // Manhattan window for nearbyJobsScore
	AmenityRadius = 2 // square window scanned for amenities
)

var orthogonal = [4]Coord{
	{Row: 0, Col: 1},
	{Row: 0, Col: -1},
	{Row: 1, Col: 0},
	{Row: -1, Col: 0},
}

// Neighbors4 returns the in-bounds orthogonal neighbours of c.
func Neighbors4(c Coord) []Coord {
	out := make([]Coord, 0, 4)
	for _, d := range orthogonal {
		n := Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}

// Neighbors8 returns the in-bounds cells of the 3×3 ring around c.
func Neighbors8(c Coord) []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if n.InBounds() {
				out = append(out, n)
			}
		}
	}
	return out
}

// Manhattan returns |Δrow| + |Δcol|.
func Manhattan(a, b Coord) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// HasAdjacentRoad is true iff one of the four orthogonal neighbours is a road.
func HasAdjacentRoad(g *Grid, c Coord) bool {
	for _, n := range Neighbors4(c) {
		if g.Kind(n) == Road {
			return true
		}
	}
	return false
}

// NearbyJobsScore sums capacity/max(1, distance) over developed commercial
// and industrial cells in the 7×7 window around c whose Manhattan distance is
// at most JobsRadius.
func NearbyJobsScore(g *Grid, c Coord) float64 {
	score := 0.0
	for dr := -JobsRadius; dr <= JobsRadius; dr++ {
		for dc := -JobsRadius; dc <= JobsRadius; dc++ {
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if !n.InBounds() {
				continue
			}
			d := abs(dr) + abs(dc)
			if d > JobsRadius {
				continue
			}
			k, lvl := g.Get(n)
			if (k != Commercial && k != Industrial) || lvl == 0 {
				continue
			}
			score += float64(Capacity(k, lvl)) / float64(max(1, d))
		}
	}
	return score
}

// NearbyPopulation sums residential capacity over the eight surrounding cells.
func NearbyPopulation(g *Grid, c Coord) int {
	pop := 0
	for _, n := range Neighbors8(c) {
		k, lvl := g.Get(n)
		if k == Residential {
			pop += Capacity(k, lvl)
		}
	}
	return pop
}

// Influence is the amenity effect felt at one cell.
type Influence struct {
	Bonus   float64 // happiness bonus accumulator
	Cleanse float64 // pollution cleanse accumulator
}

// AmenityInfluence scans the (2·AmenityRadius+1)² window around c and adds
// weight/max(1, distance) for every amenity enabled in set.
func AmenityInfluence(g *Grid, c Coord, set AmenitySet) Influence {
	var inf Influence
	for dr := -AmenityRadius; dr <= AmenityRadius; dr++ {
		for dc := -AmenityRadius; dc <= AmenityRadius; dc++ {
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if !n.InBounds() {
				continue
			}
			w, ok := set.Lookup(g.Kind(n))
			if !ok {
				continue
			}
			d := float64(max(1, abs(dr)+abs(dc)))
			inf.Bonus += w.Bonus / d
			inf.Cleanse += w.Cleanse / d
		}
	}
	return inf
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
