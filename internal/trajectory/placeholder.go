package trajectory

var placeholderAgents = [][]Position{
	{{7.0, 10.0}, {3.0, 10.0}, {-1.0, 10.0}},
	{{6.61935, 10.0}, {3.0, 10.0}, {-0.6193500000000001, 10.0}},
	{{6.269183720833333, 10.0}, {3.0, 10.0}, {-0.26918372083333336, 10.0}},
	{{5.953332286003188, 10.0}, {3.0, 10.0}, {0.0466677139968123, 10.0}},
	{{5.6812710783577, 10.0}, {3.0, 10.0}, {0.31872892164230043, 10.0}},
	{{5.453365726165287, 10.0}, {3.0, 10.0}, {0.5466342738347129, 10.0}},
	{{5.2670877445530175, 10.0}, {3.0, 20.0}, {0.7329122554469822, 1.0}},
}

// Placeholder returns the built-in example trajectory: three planar agents
// around a fixed target, one frame every 0.1s. Each call returns fresh data.
func Placeholder() []Snapshot {
	series := make([]Snapshot, len(placeholderAgents))
	for i, agents := range placeholderAgents {
		snap := Snapshot{
			Time:   float64(i) / 10,
			Target: Position{3.0, 10.0},
			Agents: make([]Position, len(agents)),
		}
		for j, a := range agents {
			snap.Agents[j] = a.Clone()
		}
		// the simulator appends one signal frame per step
		for k := 0; k <= i; k++ {
			rot := make([]Position, len(agents))
			for j := range rot {
				rot[j] = Position{0, 0}
			}
			snap.Signals = append(snap.Signals, SignalFrame{Distance: []byte("{}"), Rotations: rot})
		}
		series[i] = snap
	}
	return series
}
