// Package render draws the city grid: a PNG raster with one solid cell per
// tile and development dots, and a plain-text map for terminals.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/talgya/microcity/internal/world"
)

// DefaultCell is the pixel size of one tile.
const DefaultCell = 20

var (
	background = color.RGBA{R: 0x07, G: 0x10, B: 0x2a, A: 0xff}
	gridLine   = color.RGBA{R: 34, G: 50, B: 99, A: 140}
	devDot     = color.RGBA{R: 255, G: 255, B: 255, A: 191}
)

// Image rasterises the grid with cell×cell pixel tiles.
func Image(g *world.Grid, cell int) *image.RGBA {
	if cell < 8 {
		cell = 8
	}
	side := world.Size * cell
	img := image.NewRGBA(image.Rect(0, 0, side+1, side+1))
	fill(img, img.Bounds(), background)

	g.Each(func(c world.Coord, k world.Kind, lvl int) {
		x0, y0 := c.Col*cell, c.Row*cell
		fill(img, image.Rect(x0, y0, x0+cell, y0+cell), kindColor(k))
		if !k.IsZone() {
			return
		}
		for i := 0; i < lvl; i++ {
			cx := x0 + cell*(3+4*i)/10
			cy := y0 + cell - cell*35/100
			dot(img, cx, cy, max(1, cell/9), devDot)
		}
	})

	for i := 0; i <= world.Size; i++ {
		for p := 0; p <= side; p++ {
			blend(img, i*cell, p, gridLine)
			blend(img, p, i*cell, gridLine)
		}
	}
	return img
}

// PNG encodes the grid raster to w.
func PNG(w io.Writer, g *world.Grid, cell int) error {
	if err := png.Encode(w, Image(g, cell)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ASCII renders two characters per tile: the kind glyph followed by the
// development level for zones, or the glyph doubled for everything else.
func ASCII(g *world.Grid) string {
	var b strings.Builder
	b.Grow(world.Size * (2*world.Size + 1))
	for r := 0; r < world.Size; r++ {
		for c := 0; c < world.Size; c++ {
			k, lvl := g.Get(world.Coord{Row: r, Col: c})
			glyph := world.Glyph(k)
			b.WriteByte(glyph)
			if k.IsZone() {
				b.WriteByte(byte('0' + lvl))
			} else {
				b.WriteByte(glyph)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Legend lists the glyph for every kind.
func Legend() string {
	parts := make([]string, 0, len(world.Kinds()))
	for _, k := range world.Kinds() {
		parts = append(parts, fmt.Sprintf("%c=%s", world.Glyph(k), k.Label()))
	}
	return strings.Join(parts, " ")
}

func kindColor(k world.Kind) color.RGBA {
	return parseHex(world.Color(k))
}

func parseHex(s string) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func dot(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				blend(img, x, y, c)
			}
		}
	}
}

// blend alpha-composites c over the pixel at (x, y).
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
	}
	img.SetRGBA(x, y, color.RGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: 0xff,
	})
}
