package export

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/san-kum/fence/internal/trajectory"
)

// WriteLog writes series in the canonical log layout: one JSON object per
// line, records separated by trajectory.RecordSeparator. Legacy field names
// never appear in the output.
func WriteLog(w io.Writer, series []trajectory.Snapshot) error {
	bw := bufio.NewWriter(w)
	for i, snap := range series {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := bw.WriteString(trajectory.RecordSeparator); err != nil {
				return err
			}
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
	}
	if len(series) > 0 {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
