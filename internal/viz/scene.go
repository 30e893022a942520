package viz

import (
	"math"

	"github.com/san-kum/fence/internal/trajectory"
)

// Scene draws one frame of a series, plus a short agent trail, onto a
// braille canvas.
type Scene struct {
	Canvas *Canvas
	Camera *Camera
	Trail  int
}

func NewScene(w, h int) *Scene {
	return &Scene{Canvas: NewCanvas(w, h), Camera: NewCamera(), Trail: 20}
}

// FitBounds covers the x/y extent of every agent and target in series.
func FitBounds(series []trajectory.Snapshot) Bounds {
	b := emptyBounds()
	for _, snap := range series {
		for _, a := range snap.Agents {
			b.Include(a.Component(0), a.Component(1))
		}
		if len(snap.Target) > 0 {
			b.Include(snap.Target.Component(0), snap.Target.Component(1))
		}
	}
	return b.Pad(0.05)
}

func (s *Scene) trailStart(idx int) int {
	return max(0, idx-s.Trail)
}

// Draw2D renders series[idx] top-down. Agents are dots, the target a cross.
func (s *Scene) Draw2D(series []trajectory.Snapshot, idx int, b Bounds) {
	c := s.Canvas
	c.Clear()
	if idx < 0 || idx >= len(series) {
		return
	}
	for t := s.trailStart(idx) + 1; t <= idx; t++ {
		prev, cur := series[t-1], series[t]
		for j := range min(len(prev.Agents), len(cur.Agents)) {
			if !prev.Agents[j].IsValid() || !cur.Agents[j].IsValid() {
				continue
			}
			x0, y0 := b.Project(c, prev.Agents[j].Component(0), prev.Agents[j].Component(1))
			x1, y1 := b.Project(c, cur.Agents[j].Component(0), cur.Agents[j].Component(1))
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	snap := series[idx]
	for _, a := range snap.Agents {
		if a.IsValid() {
			c.Dot(b.Project(c, a.Component(0), a.Component(1)))
		}
	}
	if len(snap.Target) > 0 && snap.Target.IsValid() {
		x, y := b.Project(c, snap.Target.Component(0), snap.Target.Component(1))
		c.Cross(x, y, 3)
	}
}

// fit3D returns the centre of the series and the factor that scales its
// largest half-extent to one.
func fit3D(series []trajectory.Snapshot) (Vec3, float64) {
	lo := Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	include := func(p trajectory.Position) {
		if len(p) == 0 || !p.IsValid() {
			return
		}
		v := Vec3FromPosition(p)
		lo = Vec3{math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z)}
		hi = Vec3{math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z)}
	}
	for _, snap := range series {
		for _, a := range snap.Agents {
			include(a)
		}
		include(snap.Target)
	}
	if lo.X > hi.X {
		return Vec3{}, 1
	}
	centre := lo.Add(hi).Scale(0.5)
	half := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z)) / 2
	if half == 0 {
		return centre, 1
	}
	return centre, 1 / half
}

// Draw3D renders series[idx] through the scene camera.
func (s *Scene) Draw3D(series []trajectory.Snapshot, idx int) {
	c := s.Canvas
	c.Clear()
	if idx < 0 || idx >= len(series) {
		return
	}
	centre, scale := fit3D(series)
	world := func(p trajectory.Position) Vec3 {
		return Vec3FromPosition(p).Sub(centre).Scale(scale)
	}

	wf := AxesWireframe(0.5)
	for t := s.trailStart(idx) + 1; t <= idx; t++ {
		prev, cur := series[t-1], series[t]
		for j := range min(len(prev.Agents), len(cur.Agents)) {
			if prev.Agents[j].IsValid() && cur.Agents[j].IsValid() {
				wf.AddEdge(world(prev.Agents[j]), world(cur.Agents[j]))
			}
		}
	}
	snap := series[idx]
	for _, a := range snap.Agents {
		if a.IsValid() {
			wf.AddPoint(world(a))
		}
	}
	if len(snap.Target) > 0 && snap.Target.IsValid() {
		wf.AddCross(world(snap.Target), 0.08)
	}
	Render3D(c, wf, s.Camera)
}
