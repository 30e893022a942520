package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/fence/internal/trajectory"
)

func TestEvaluatePlaceholder(t *testing.T) {
	got := Evaluate(trajectory.Placeholder(), Defaults())

	if got["min_offset"] > 1e-9 {
		t.Errorf("expected zero min offset, got %f", got["min_offset"])
	}
	// last frame: centroid (3, 31/3) against target (3, 10)
	if math.Abs(got["final_offset"]-1.0/3) > 1e-9 {
		t.Errorf("expected final offset %f, got %f", 1.0/3, got["final_offset"])
	}
	if !math.IsNaN(got["settling_time"]) {
		t.Errorf("expected no settling, got %f", got["settling_time"])
	}
	if got["spread"] <= 0 {
		t.Errorf("expected positive spread, got %f", got["spread"])
	}
}

func TestSettlingTime(t *testing.T) {
	m := NewSettlingTime(0.5)
	frames := []struct {
		t, x float64
	}{
		{0, 3}, {1, 0.2}, {2, 0.7}, {3, 0.4}, {4, 0.1},
	}
	for _, f := range frames {
		m.Observe(trajectory.Snapshot{
			Time:   f.t,
			Agents: []trajectory.Position{{f.x, 0}},
			Target: trajectory.Position{0, 0},
		})
	}
	if m.Value() != 3 {
		t.Errorf("expected settling at t=3, got %f", m.Value())
	}

	m.Reset()
	if !math.IsNaN(m.Value()) {
		t.Error("expected NaN after reset")
	}
}

func TestSpread(t *testing.T) {
	m := NewSpread()
	m.Observe(trajectory.Snapshot{
		Agents: []trajectory.Position{{-1, 0}, {1, 0}, {0, 3}, {0, -3}},
		Target: trajectory.Position{0, 0},
	})
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("expected spread 2, got %f", m.Value())
	}
}

func TestMetricsIgnoreEmptyFrames(t *testing.T) {
	series := []trajectory.Snapshot{
		{Time: 0, Agents: []trajectory.Position{{1, 0}}, Target: trajectory.Position{0, 0}},
		{Time: 1, Target: trajectory.Position{0, 0}},
	}
	got := Evaluate(series, Defaults())
	if got["final_offset"] != 1 {
		t.Errorf("expected final offset 1, got %f", got["final_offset"])
	}
	if got["min_offset"] != 1 {
		t.Errorf("expected min offset 1, got %f", got["min_offset"])
	}
}
