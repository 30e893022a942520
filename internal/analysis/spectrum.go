package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooShort   = errors.New("analysis: need at least 4 finite samples")
	ErrLength     = errors.New("analysis: times and values differ in length")
	ErrNotUniform = errors.New("analysis: sample times are not increasing")
)

// Peak is one spectral component.
type Peak struct {
	Frequency float64
	Power     float64
}

// PowerSpectrum returns |X[k]| for k in [0, n/2). The signal is centred on
// the mean of its finite samples; non-finite samples become zero.
func PowerSpectrum(data []float64) []float64 {
	clean := fillGaps(data)
	if len(clean) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(clean)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency finds the strongest component above DC. The sample
// interval is the mean step of times.
func DominantFrequency(times, values []float64) (Peak, error) {
	if len(times) != len(values) {
		return Peak{}, ErrLength
	}
	finite := 0
	for _, v := range values {
		if isFinite(v) {
			finite++
		}
	}
	if finite < 4 {
		return Peak{}, ErrTooShort
	}

	steps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		d := times[i] - times[i-1]
		if d <= 0 {
			return Peak{}, ErrNotUniform
		}
		steps = append(steps, d)
	}
	dt := stat.Mean(steps, nil)

	ps := PowerSpectrum(values)
	best := Peak{}
	n := float64(len(values))
	for k := 1; k < len(ps); k++ {
		if ps[k] > best.Power {
			best = Peak{Frequency: float64(k) / (n * dt), Power: ps[k]}
		}
	}
	return best, nil
}

func fillGaps(data []float64) []float64 {
	var sum float64
	var count int
	for _, v := range data {
		if isFinite(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	out := make([]float64, len(data))
	for i, v := range data {
		if isFinite(v) {
			out[i] = v - mean
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
