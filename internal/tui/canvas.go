package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/soaringjerry/tuneup/internal/radar"
)

// layer decides a cell's color; higher layers win.
type layer uint8

const (
	layerNone layer = iota
	layerGrid
	layerManager
	layerIndividual
	layerAccent
	layerDanger
	layerGapManager
	layerGapIndividual
)

// braille dot bits indexed by [y][x] within a 2x4 cell.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille raster: every terminal cell holds 2x4 dots.
type Canvas struct {
	cols, rows int
	cells      []rune
	layers     []layer
}

// NewCanvas allocates cols x rows braille cells.
func NewCanvas(cols, rows int) *Canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	return &Canvas{cols: cols, rows: rows, cells: make([]rune, cols*rows), layers: make([]layer, cols*rows)}
}

func (c *Canvas) dotWidth() int  { return c.cols * 2 }
func (c *Canvas) dotHeight() int { return c.rows * 4 }

// Set turns on the dot at (x, y) in dot coordinates.
func (c *Canvas) Set(x, y int, l layer) {
	if x < 0 || y < 0 || x >= c.dotWidth() || y >= c.dotHeight() {
		return
	}
	i := (y/4)*c.cols + x/2
	c.cells[i] |= dotBits[y%4][x%2]
	if l > c.layers[i] {
		c.layers[i] = l
	}
}

// Line rasterises a segment. A positive dash length leaves gaps of the same length.
func (c *Canvas) Line(x0, y0, x1, y1 int, l layer, dash int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for step := 0; ; step++ {
		if dash <= 0 || (step/dash)%2 == 0 {
			c.Set(x0, y0, l)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Render emits rows of braille runes, colored by each cell's top layer.
func (c *Canvas) Render(styles map[layer]lipgloss.Style) string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			i := row*c.cols + col
			ch := string(rune(0x2800) + c.cells[i])
			if st, ok := styles[c.layers[i]]; ok && c.cells[i] != 0 {
				ch = st.Render(ch)
			}
			b.WriteString(ch)
		}
	}
	return b.String()
}

// projector maps scene coordinates, centred on the origin, onto the dot grid.
type projector struct {
	size   float64
	width  int
	height int
}

func (p projector) at(pt radar.Point) (int, int) {
	x := (pt.X + p.size/2) / p.size * float64(p.width-1)
	y := (pt.Y + p.size/2) / p.size * float64(p.height-1)
	return int(math.Round(x)), int(math.Round(y))
}

func (c *Canvas) segment(p projector, a, b radar.Point, l layer, dash int) {
	x0, y0 := p.at(a)
	x1, y1 := p.at(b)
	c.Line(x0, y0, x1, y1, l, dash)
}

func (c *Canvas) polygon(p projector, pts []radar.Point, l layer, dash int) {
	for i := range pts {
		c.segment(p, pts[i], pts[(i+1)%len(pts)], l, dash)
	}
}

// Paint draws a scene: grid, series outlines, then gap markers.
func Paint(scene radar.Scene, cols, rows int) *Canvas {
	c := NewCanvas(cols, rows)
	p := projector{size: scene.Size, width: c.dotWidth(), height: c.dotHeight()}
	for _, ring := range scene.Rings {
		c.polygon(p, ring, layerGrid, 0)
	}
	for _, spoke := range scene.Spokes {
		c.segment(p, radar.Point{}, spoke, layerGrid, 1)
	}
	for _, s := range scene.Series {
		switch {
		case !scene.Multi:
			accent := scene.Palette.Accent
			for _, e := range s.Edges {
				m := radar.Point{X: (e.From.X + e.To.X) / 2, Y: (e.From.Y + e.To.Y) / 2}
				c.segment(p, e.From, m, toneLayer(e.FromColor, accent), 0)
				c.segment(p, m, e.To, toneLayer(e.ToColor, accent), 0)
			}
		case s.Role == radar.RoleManager:
			c.polygon(p, s.Points, layerManager, 2)
		default:
			c.polygon(p, s.Points, layerIndividual, 0)
		}
	}
	for _, g := range scene.Gaps {
		l := layerGapIndividual
		if g.Leader == radar.RoleManager {
			l = layerGapManager
		}
		c.polygon(p, g.Polygon, l, 0)
		x, y := p.at(g.Dot)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				c.Set(x+dx, y+dy, l)
			}
		}
	}
	return c
}

func toneLayer(color, accent string) layer {
	if color == accent {
		return layerAccent
	}
	return layerDanger
}
