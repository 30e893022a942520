package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fence/internal/trajectory"
)

func norm(p trajectory.Position) float64 {
	if len(p) == 0 {
		return 0
	}
	return floats.Norm(p, 2)
}

// FinalOffset is the centroid-to-target distance at the last snapshot
// that has agents.
type FinalOffset struct {
	last float64
}

func NewFinalOffset() *FinalOffset {
	return &FinalOffset{last: math.NaN()}
}

func (f *FinalOffset) Name() string { return "final_offset" }

func (f *FinalOffset) Observe(s trajectory.Snapshot) {
	if d := offsetNorm(s); !math.IsNaN(d) {
		f.last = d
	}
}

func (f *FinalOffset) Value() float64 { return f.last }
func (f *FinalOffset) Reset()         { f.last = math.NaN() }

// MinOffset is the closest the centroid came to the target.
type MinOffset struct {
	min float64
}

func NewMinOffset() *MinOffset {
	return &MinOffset{min: math.Inf(1)}
}

func (m *MinOffset) Name() string { return "min_offset" }

func (m *MinOffset) Observe(s trajectory.Snapshot) {
	if d := offsetNorm(s); d < m.min {
		m.min = d
	}
}

func (m *MinOffset) Value() float64 {
	if math.IsInf(m.min, 1) {
		return math.NaN()
	}
	return m.min
}

func (m *MinOffset) Reset() { m.min = math.Inf(1) }

// SettlingTime is the earliest time after which the offset stays below
// the threshold for the rest of the series. NaN when it never settles.
type SettlingTime struct {
	threshold float64
	since     float64
}

func NewSettlingTime(threshold float64) *SettlingTime {
	return &SettlingTime{threshold: threshold, since: math.NaN()}
}

func (st *SettlingTime) Name() string { return "settling_time" }

func (st *SettlingTime) Observe(s trajectory.Snapshot) {
	d := offsetNorm(s)
	if math.IsNaN(d) {
		return
	}
	if d >= st.threshold {
		st.since = math.NaN()
		return
	}
	if math.IsNaN(st.since) {
		st.since = s.Time
	}
}

func (st *SettlingTime) Value() float64 { return st.since }
func (st *SettlingTime) Reset()         { st.since = math.NaN() }
