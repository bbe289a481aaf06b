package world

import "fmt"

// Coord addresses a grid cell by row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds returns true if the coordinate lies inside the grid.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < Size && c.Col < Size
}

// Grid holds the two parallel tile matrices: kind and development level.
// A level above zero is only ever stored on a zone tile.
type Grid struct {
	kinds  [Size][Size]Kind
	levels [Size][Size]uint8
}

// NewGrid creates an all-empty grid.
func NewGrid() *Grid {
	return &Grid{}
}

// Get returns the kind and development level at c. Out-of-bounds
// coordinates read as empty ground.
func (g *Grid) Get(c Coord) (Kind, int) {
	if !c.InBounds() {
		return Empty, 0
	}
	return g.kinds[c.Row][c.Col], int(g.levels[c.Row][c.Col])
}

// Kind returns the kind at c.
func (g *Grid) Kind(c Coord) Kind {
	k, _ := g.Get(c)
	return k
}

// Level returns the development level at c.
func (g *Grid) Level(c Coord) int {
	_, l := g.Get(c)
	return l
}

// Set changes the kind at c. Leaving a zone kind, or entering one from a
// non-zone kind, resets the level to 0. Returns false if c is out of bounds
// or k is not a declared kind.
func (g *Grid) Set(c Coord, k Kind) bool {
	if !c.InBounds() || !k.Valid() {
		return false
	}
	prev := g.kinds[c.Row][c.Col]
	g.kinds[c.Row][c.Col] = k
	if !k.IsZone() || prev != k {
		g.levels[c.Row][c.Col] = 0
	}
	return true
}

// SetLevel stores a development level clamped to [0, MaxLevel]. Non-zone
// tiles keep level 0.
func (g *Grid) SetLevel(c Coord, level int) bool {
	if !c.InBounds() {
		return false
	}
	if !g.kinds[c.Row][c.Col].IsZone() {
		g.levels[c.Row][c.Col] = 0
		return false
	}
	g.levels[c.Row][c.Col] = uint8(clampLevel(level))
	return true
}

// Reset returns every cell to empty ground at level 0.
func (g *Grid) Reset() {
	g.kinds = [Size][Size]Kind{}
	g.levels = [Size][Size]uint8{}
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	cp := *g
	return &cp
}

// Each calls fn for every cell in row-major order.
func (g *Grid) Each(fn func(c Coord, k Kind, level int)) {
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			fn(Coord{Row: r, Col: col}, g.kinds[r][col], int(g.levels[r][col]))
		}
	}
}

// Count returns how many cells hold kind k.
func (g *Grid) Count(k Kind) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g.kinds[r][c] == k {
				n++
			}
		}
	}
	return n
}

// Cells flattens the grid into row-major kind and level slices, the layout
// used by the API and the snapshot codec.
func (g *Grid) Cells() (kinds []Kind, levels []int) {
	kinds = make([]Kind, 0, Size*Size)
	levels = make([]int, 0, Size*Size)
	g.Each(func(_ Coord, k Kind, l int) {
		kinds = append(kinds, k)
		levels = append(levels, l)
	})
	return kinds, levels
}

// Restore replaces the grid contents from row-major slices produced by Cells.
// Levels on non-zone tiles are dropped.
func (g *Grid) Restore(kinds []Kind, levels []int) error {
	if len(kinds) != Size*Size || len(levels) != Size*Size {
		return fmt.Errorf("grid restore: want %d cells, got %d kinds and %d levels",
			Size*Size, len(kinds), len(levels))
	}
	g.Reset()
	for i, k := range kinds {
		if !k.Valid() {
			return fmt.Errorf("grid restore: cell %d has unknown kind %d", i, k)
		}
		c := Coord{Row: i / Size, Col: i % Size}
		g.kinds[c.Row][c.Col] = k
		if k.IsZone() {
			g.levels[c.Row][c.Col] = uint8(clampLevel(levels[i]))
		}
	}
	return nil
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	zones := g.Count(Residential) + g.Count(Commercial) + g.Count(Industrial)
	return fmt.Sprintf("Grid(size=%d, roads=%d, zones=%d)", Size, g.Count(Road), zones)
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
