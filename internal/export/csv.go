package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/fence/internal/trajectory"
)

var axisNames = []string{"x", "y", "z"}

// CSVHeader names the columns WriteCSV emits for series: time, the centroid
// offset per axis, the target, then every agent slot.
func CSVHeader(series []trajectory.Snapshot) []string {
	dim, agents := shape(series)
	header := []string{"time"}
	for i := 0; i < dim; i++ {
		header = append(header, "offset_"+axisNames[i])
	}
	for i := 0; i < dim; i++ {
		header = append(header, "target_"+axisNames[i])
	}
	for a := 0; a < agents; a++ {
		for i := 0; i < dim; i++ {
			header = append(header, fmt.Sprintf("a%d_%s", a, axisNames[i]))
		}
	}
	return header
}

// WriteCSV writes one row per snapshot. Agents missing from a snapshot
// leave their cells empty; an undefined offset is written as NaN.
func WriteCSV(w io.Writer, series []trajectory.Snapshot) error {
	cw := csv.NewWriter(w)
	header := CSVHeader(series)
	if err := cw.Write(header); err != nil {
		return err
	}
	dim, agents := shape(series)
	off := trajectory.ComputeOffset(series)
	axes := off.Axes()

	for t, snap := range series {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(snap.Time))
		for i := 0; i < dim; i++ {
			row = append(row, formatFloat(axes[i][t]))
		}
		for i := 0; i < dim; i++ {
			if len(snap.Target) == 0 {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(snap.Target.Component(i)))
		}
		for a := 0; a < agents; a++ {
			for i := 0; i < dim; i++ {
				if a >= len(snap.Agents) {
					row = append(row, "")
					continue
				}
				row = append(row, formatFloat(snap.Agents[a].Component(i)))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// shape is the column layout: 3 axes if anything is 3D, and the largest
// agent count in the series.
func shape(series []trajectory.Snapshot) (dim, agents int) {
	dim = 2
	for _, snap := range series {
		if snap.Dim() >= 3 {
			dim = 3
		}
		agents = max(agents, len(snap.Agents))
	}
	return dim, agents
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
