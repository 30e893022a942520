package analysis

import (
	"math"

	"github.com/san-kum/fence/internal/viz"
)

// Point is one sample of a phase portrait.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds one offset axis plotted against another.
type PhasePortrait2D struct {
	Points []Point
}

// GeneratePhasePortrait pairs xs[i] with ys[i]. Pairs with a NaN on either
// side are skipped, as are samples past the shorter slice.
func GeneratePhasePortrait(xs, ys []float64) *PhasePortrait2D {
	n := min(len(xs), len(ys))
	portrait := &PhasePortrait2D{Points: make([]Point, 0, n)}
	for i := 0; i < n; i++ {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		portrait.Points = append(portrait.Points, Point{X: xs[i], Y: ys[i]})
	}
	return portrait
}

// Bounds is the padded world rectangle covering every point.
func (p *PhasePortrait2D) Bounds() viz.Bounds {
	b := viz.Bounds{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for _, pt := range p.Points {
		b.Include(pt.X, pt.Y)
	}
	return b.Pad(0.1)
}

// Draw plots the portrait as braille dots on c, with axis lines through the
// origin when it is in view. It reports false and draws nothing for an empty
// portrait.
func (p *PhasePortrait2D) Draw(c *viz.Canvas) bool {
	if p == nil || len(p.Points) == 0 {
		return false
	}
	b := p.Bounds()
	pw, ph := c.PixelSize()
	if b.MinX <= 0 && b.MaxX >= 0 {
		x, _ := b.Project(c, 0, 0)
		c.DrawLine(x, 0, x, ph-1)
	}
	if b.MinY <= 0 && b.MaxY >= 0 {
		_, y := b.Project(c, 0, 0)
		c.DrawLine(0, y, pw-1, y)
	}
	for _, pt := range p.Points {
		c.Dot(b.Project(c, pt.X, pt.Y))
	}
	return true
}

// Render draws the portrait on a width x height braille canvas.
func (p *PhasePortrait2D) Render(width, height int) string {
	c := viz.NewCanvas(width, height)
	if !p.Draw(c) {
		return ""
	}
	return c.String()
}
