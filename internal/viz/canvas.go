package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille grid; each cell holds 2x4 sub-pixels.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

// Set lights the sub-pixel (x, y). Out of range points are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Dot draws a 2x2 block around (x, y).
func (c *Canvas) Dot(x, y int) {
	c.Set(x, y)
	c.Set(x+1, y)
	c.Set(x, y+1)
	c.Set(x+1, y+1)
}

// Cross draws a small plus sign centred on (x, y).
func (c *Canvas) Cross(x, y, r int) {
	c.DrawLine(x-r, y, x+r, y)
	c.DrawLine(x, y-r, x, y+r)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Bounds is a world-space rectangle mapped onto the canvas.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// Include grows b to contain (x, y). NaN coordinates are ignored.
func (b *Bounds) Include(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	b.MinX = math.Min(b.MinX, x)
	b.MaxX = math.Max(b.MaxX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxY = math.Max(b.MaxY, y)
}

// Pad widens b by frac of its extent on every side. An empty or degenerate
// axis gets a unit extent first.
func (b Bounds) Pad(frac float64) Bounds {
	if b.MinX > b.MaxX {
		b.MinX, b.MaxX = 0, 0
	}
	if b.MinY > b.MaxY {
		b.MinY, b.MaxY = 0, 0
	}
	rx, ry := b.MaxX-b.MinX, b.MaxY-b.MinY
	if rx <= 0 {
		b.MinX, b.MaxX, rx = b.MinX-0.5, b.MinX+0.5, 1
	}
	if ry <= 0 {
		b.MinY, b.MaxY, ry = b.MinY-0.5, b.MinY+0.5, 1
	}
	return Bounds{b.MinX - rx*frac, b.MaxX + rx*frac, b.MinY - ry*frac, b.MaxY + ry*frac}
}

// Project maps world (x, y) to sub-pixel coordinates, y up.
func (b Bounds) Project(c *Canvas, x, y float64) (int, int) {
	pw, ph := c.PixelSize()
	px := (x - b.MinX) / (b.MaxX - b.MinX) * float64(pw-1)
	py := float64(ph-1) - (y-b.MinY)/(b.MaxY-b.MinY)*float64(ph-1)
	return int(math.Round(px)), int(math.Round(py))
}

func emptyBounds() Bounds {
	return Bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
