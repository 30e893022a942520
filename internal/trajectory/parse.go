package trajectory

import (
	"errors"
	"strings"
)

// RecordSeparator splits consecutive records in a simulator log. The log is
// not a JSON array: there are no brackets and the last record may lack it.
const RecordSeparator = ",\n"

// Skip describes a fragment that was dropped with a warning.
type Skip struct {
	Index    int
	Fragment string
	Err      error
}

// Batch is the outcome of parsing one chunk of log text. A store that
// commits a batch keeps its own copy of the Snapshots slice; the agent
// positions inside each snapshot are shared and must not be modified.
type Batch struct {
	Snapshots []Snapshot
	Skipped   []Skip
	// Filtered counts records dropped for lacking a numeric time.
	Filtered int
}

func (b Batch) Empty() bool {
	return len(b.Snapshots) == 0
}

// FirstTime returns the time of the earliest record in the batch.
func (b Batch) FirstTime() (float64, bool) {
	if len(b.Snapshots) == 0 {
		return 0, false
	}
	return b.Snapshots[0].Time, true
}

// SplitFragments cuts log text into trimmed record fragments. Blank
// fragments, such as the one after a trailing separator, are omitted.
func SplitFragments(text string) []string {
	text = strings.ReplaceAll(text, ",\r\n", RecordSeparator)
	parts := strings.Split(text, RecordSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimRight(p, ",")
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseLog decodes every fragment of text. A malformed fragment never aborts
// the batch; it is recorded in Skipped and parsing continues.
func ParseLog(text string) Batch {
	fragments := SplitFragments(text)
	batch := Batch{Snapshots: make([]Snapshot, 0, len(fragments))}
	for i, f := range fragments {
		snap, err := DecodeFragment([]byte(f))
		switch {
		case err == nil:
			batch.Snapshots = append(batch.Snapshots, snap)
		case errors.Is(err, ErrMissingTime):
			batch.Filtered++
		default:
			batch.Skipped = append(batch.Skipped, Skip{Index: i, Fragment: f, Err: err})
		}
	}
	return batch
}
