package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/fence/internal/trajectory"
	"github.com/san-kum/fence/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	pw, ph := canvas.PixelSize()
	width := float64(pw) * scale
	height := float64(ph) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ffff">
`, width, height, width, height)

	r := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PathsToSVG draws every agent's path through series as a polyline and the
// final target as a small square. Only x and y are used.
func PathsToSVG(series []trajectory.Snapshot, width, height int) string {
	if len(series) == 0 {
		return ""
	}
	b := viz.FitBounds(series)
	rangeX, rangeY := b.MaxX-b.MinX, b.MaxY-b.MinY
	project := func(p trajectory.Position) (float64, float64) {
		x := (p.Component(0) - b.MinX) / rangeX * float64(width)
		y := float64(height) - (p.Component(1)-b.MinY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	agents := 0
	for _, snap := range series {
		agents = max(agents, len(snap.Agents))
	}
	for a := 0; a < agents; a++ {
		var pts []string
		for _, snap := range series {
			if a >= len(snap.Agents) || !snap.Agents[a].IsValid() {
				continue
			}
			x, y := project(snap.Agents[a])
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", x, y))
		}
		if len(pts) < 2 {
			continue
		}
		fmt.Fprintf(&sb, "<polyline fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" points=\"%s\"/>\n",
			palette[a%len(palette)], strings.Join(pts, " "))
	}

	last := series[len(series)-1]
	if len(last.Target) > 0 && last.Target.IsValid() {
		x, y := project(last.Target)
		fmt.Fprintf(&sb, "<rect class=\"target\" x=\"%.1f\" y=\"%.1f\" width=\"6\" height=\"6\" fill=\"#ff00ff\"/>\n", x-3, y-3)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

var palette = []string{"#00ffff", "#ffff00", "#00ff88", "#ff8800", "#8888ff", "#ff4444"}
