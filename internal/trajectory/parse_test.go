package trajectory

import (
	"errors"
	"testing"
)


func TestSplitFragments(t *testing.T) {
	text := "{\"a\":1},\n  {\"b\":2} ,\n{\"c\":3},\n"
	got := SplitFragments(text)
	want := []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}
	if len(got) != len(want) {
		t.Fatalf("expected %d fragments, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitFragments_CRLF(t *testing.T) {
	got := SplitFragments("{\"a\":1},\r\n{\"b\":2}")
	if len(got) != 2 {
		t.Fatalf("expected 2 fragments, got %d: %q", len(got), got)
	}
}

func TestParseLog_MalformedFragmentDropped(t *testing.T) {
	text := `{"time": 0.0, "state": {"agents": [[1, 0]], "target": [0, 0]}},
{"time": 0.1, "state": {"agents": [[1, 0]], "targ,
{"time": 0.2, "state": {"agents": [[1, 0]], "target": [0, 0]}},
{"time": 0.3, "states": {"agents": [[1, 0]], "target": [0, 0]}}`

	batch := ParseLog(text)
	if len(batch.Snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(batch.Snapshots))
	}
	wantTimes := []float64{0.0, 0.2, 0.3}
	for i, snap := range batch.Snapshots {
		if snap.Time != wantTimes[i] {
			t.Errorf("snapshot %d: expected time %v, got %v", i, wantTimes[i], snap.Time)
		}
	}
	if len(batch.Skipped) != 1 {
		t.Fatalf("expected 1 skipped fragment, got %d", len(batch.Skipped))
	}
	if batch.Skipped[0].Index != 1 {
		t.Errorf("expected skipped index 1, got %d", batch.Skipped[0].Index)
	}
}

func TestParseLog_MissingTimeFiltered(t *testing.T) {
	text := `{"time": 0.0, "state": {"agents": [[1, 0]], "target": [0, 0]}},
{"state": {"agents": [[1, 0]], "target": [0, 0]}},
{"time": 0.1, "state": {"agents": [[1, 0]], "target": [0, 0]}},
`
	batch := ParseLog(text)
	if len(batch.Snapshots) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(batch.Snapshots))
	}
	if batch.Filtered != 1 {
		t.Errorf("expected 1 filtered record, got %d", batch.Filtered)
	}
	if len(batch.Skipped) != 0 {
		t.Errorf("expected no warnings for partial records, got %d", len(batch.Skipped))
	}
}

func TestParseLog_Empty(t *testing.T) {
	batch := ParseLog("  \n")
	if !batch.Empty() {
		t.Error("expected empty batch")
	}
	if _, ok := batch.FirstTime(); ok {
		t.Error("empty batch should have no first time")
	}
}

func TestParseLog_SkipReasons(t *testing.T) {
	batch := ParseLog("{\"time\": 1},\n[1]")
	if len(batch.Skipped) != 2 {
		t.Fatalf("expected 2 skipped, got %d", len(batch.Skipped))
	}
	if !errors.Is(batch.Skipped[0].Err, ErrMissingState) {
		t.Errorf("expected ErrMissingState, got %v", batch.Skipped[0].Err)
	}
	if !errors.Is(batch.Skipped[1].Err, ErrNotObject) {
		t.Errorf("expected ErrNotObject, got %v", batch.Skipped[1].Err)
	}
}
