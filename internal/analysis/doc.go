// Package analysis inspects the centroid offset signal of a trajectory.
//
//   - [PowerSpectrum]: magnitude spectrum of one offset axis
//   - [DominantFrequency]: strongest non-DC component, in cycles per time unit
//   - [GeneratePhasePortrait]: offset axis against offset axis, drawn on a braille canvas
//
// # Oscillation
//
// A swarm that circles its target instead of closing in shows up as a clear
// spectral peak:
//
//	off := store.CentroidOffset()
//	peak, err := analysis.DominantFrequency(store.TimeSeries(), off.X)
package analysis
