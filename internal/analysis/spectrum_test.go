package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/fence/internal/viz"
)

func sine(n int, dt, freq float64) (times, values []float64) {
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		times = append(times, t)
		values = append(values, math.Sin(2*math.Pi*freq*t))
	}
	return times, values
}

func TestDominantFrequency(t *testing.T) {
	times, values := sine(100, 0.01, 2)
	peak, err := DominantFrequency(times, values)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(peak.Frequency-2) > 1e-9 {
		t.Errorf("frequency = %v, want 2", peak.Frequency)
	}
	if math.Abs(peak.Power-50) > 1e-6 {
		t.Errorf("power = %v, want 50", peak.Power)
	}
}

func TestDominantFrequencyErrors(t *testing.T) {
	tests := []struct {
		name   string
		times  []float64
		values []float64
		want   error
	}{
		{"length", []float64{0, 1}, []float64{0}, ErrLength},
		{"short", []float64{0, 1, 2}, []float64{1, 2, 3}, ErrTooShort},
		{"nan", []float64{0, 1, 2, 3, 4}, []float64{1, math.NaN(), math.NaN(), 2, 3}, ErrTooShort},
		{"not increasing", []float64{0, 1, 1, 2}, []float64{1, 2, 3, 4}, ErrNotUniform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DominantFrequency(tt.times, tt.values)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPowerSpectrumGaps(t *testing.T) {
	if ps := PowerSpectrum([]float64{math.NaN(), math.NaN()}); ps != nil {
		t.Errorf("all-NaN spectrum = %v, want nil", ps)
	}
	ps := PowerSpectrum([]float64{1, math.NaN(), 1, 1})
	if len(ps) != 2 {
		t.Fatalf("len = %d, want 2", len(ps))
	}
	for k, v := range ps {
		if v > 1e-12 {
			t.Errorf("ps[%d] = %v, want 0 for a constant signal", k, v)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	p := GeneratePhasePortrait([]float64{-1, math.NaN(), 1, 2}, []float64{-1, 0, 1})
	if len(p.Points) != 2 {
		t.Fatalf("points = %v, want 2", p.Points)
	}
	out := p.Render(20, 10)
	if strings.Count(out, "\n") != 10 {
		t.Errorf("rows = %d, want 10", strings.Count(out, "\n"))
	}

	c := viz.NewCanvas(20, 10)
	if !p.Draw(c) {
		t.Fatal("portrait drew nothing")
	}
	b := p.Bounds()
	for _, pt := range p.Points {
		if x, y := b.Project(c, pt.X, pt.Y); !c.IsSet(x, y) {
			t.Errorf("point %v not plotted at (%d, %d)", pt, x, y)
		}
	}
	ox, oy := b.Project(c, 0, 0)
	pw, ph := c.PixelSize()
	if !c.IsSet(ox, 0) || !c.IsSet(ox, ph-1) {
		t.Error("vertical axis missing")
	}
	if !c.IsSet(0, oy) || !c.IsSet(pw-1, oy) {
		t.Error("horizontal axis missing")
	}

	if (&PhasePortrait2D{}).Render(10, 5) != "" {
		t.Error("empty portrait should render nothing")
	}
}
