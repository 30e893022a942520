package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/fence/internal/trajectory"
)

// Spread is the mean agent distance to the centroid at the last snapshot
// with agents; it tracks how tight the formation ends up.
type Spread struct {
	last float64
}

func NewSpread() *Spread {
	return &Spread{last: math.NaN()}
}

func (s *Spread) Name() string { return "spread" }

func (s *Spread) Observe(snap trajectory.Snapshot) {
	dim := snap.Dim()
	c, ok := snap.Centroid(dim)
	if !ok {
		return
	}
	dists := make([]float64, len(snap.Agents))
	d := make(trajectory.Position, dim)
	for i, a := range snap.Agents {
		for k := range d {
			d[k] = a.Component(k) - c[k]
		}
		dists[i] = norm(d)
	}
	s.last = stat.Mean(dists, nil)
}

func (s *Spread) Value() float64 { return s.last }
func (s *Spread) Reset()         { s.last = math.NaN() }
