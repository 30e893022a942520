package trajectory

import (
	"encoding/json"
	"math"
)

// Position is a 2 or 3 component point.
type Position []float64

func (p Position) Clone() Position {
	c := make(Position, len(p))
	copy(c, p)
	return c
}

// Component returns the i-th coordinate, or zero when p is shorter.
func (p Position) Component(i int) float64 {
	if i < len(p) {
		return p[i]
	}
	return 0
}

func (p Position) IsValid() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SignalFrame is auxiliary per-step signal data. Rotations[i] belongs to
// Agents[i] of the enclosing snapshot; Distance is passed through untouched.
type SignalFrame struct {
	Distance  json.RawMessage `json:"distance,omitempty"`
	Rotations []Position      `json:"rotations"`
}

// Snapshot is one simulation instant.
type Snapshot struct {
	Time    float64
	Agents  []Position
	Target  Position
	Signals []SignalFrame
}

// Dim returns the largest component count among the agents and the target.
func (s Snapshot) Dim() int {
	d := len(s.Target)
	for _, a := range s.Agents {
		if len(a) > d {
			d = len(a)
		}
	}
	return d
}

// Centroid is the componentwise mean of the agent positions. Agents shorter
// than dim contribute zero to the missing axes. ok is false without agents.
func (s Snapshot) Centroid(dim int) (Position, bool) {
	if len(s.Agents) == 0 {
		return nil, false
	}
	c := make(Position, dim)
	for _, a := range s.Agents {
		for i := range c {
			c[i] += a.Component(i)
		}
	}
	n := float64(len(s.Agents))
	for i := range c {
		c[i] /= n
	}
	return c, true
}

// Offset is the centroid minus the target, in dim components.
func (s Snapshot) Offset(dim int) (Position, bool) {
	c, ok := s.Centroid(dim)
	if !ok {
		return nil, false
	}
	for i := range c {
		c[i] -= s.Target.Component(i)
	}
	return c, true
}

// Offset holds the centroid offset of every snapshot split per axis. The
// slices are aligned by snapshot index; Z is nil for purely planar data.
type Offset struct {
	X, Y, Z []float64
}

// Axes returns the populated axes in x, y, z order.
func (o Offset) Axes() [][]float64 {
	axes := [][]float64{o.X, o.Y}
	if o.Z != nil {
		axes = append(axes, o.Z)
	}
	return axes
}
