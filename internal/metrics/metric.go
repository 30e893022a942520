package metrics

import (
	"math"

	"github.com/san-kum/fence/internal/trajectory"
)

// DefaultSettleThreshold is the offset norm under which a swarm counts as
// settled on its target.
const DefaultSettleThreshold = 0.1

// Metric accumulates a scalar over a series, one snapshot at a time.
type Metric interface {
	Name() string
	Observe(s trajectory.Snapshot)
	Value() float64
	Reset()
}

// Defaults is the set stored with archived runs.
func Defaults() []Metric {
	return []Metric{
		NewFinalOffset(),
		NewMinOffset(),
		NewSpread(),
		NewSettlingTime(DefaultSettleThreshold),
	}
}

// Evaluate resets each metric, feeds it the whole series and collects the
// results by name.
func Evaluate(series []trajectory.Snapshot, ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range series {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// offsetNorm is the Euclidean length of the centroid offset, NaN without agents.
func offsetNorm(s trajectory.Snapshot) float64 {
	off, ok := s.Offset(s.Dim())
	if !ok {
		return math.NaN()
	}
	return norm(off)
}
