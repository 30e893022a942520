package trajectory

import (
	"bytes"
	"encoding/json"
)

const (
	fieldTime        = "time"
	fieldState       = "state"
	fieldLegacyState = "states"
	fieldSignals     = "signals"
)

type wireState struct {
	Agents []Position `json:"agents"`
	Target Position   `json:"target"`
}

type wireRecord struct {
	Time    float64       `json:"time"`
	State   wireState     `json:"state"`
	Signals []SignalFrame `json:"signals,omitempty"`
}

// Normalize rewrites the legacy "states" key to "state" in place. A non-null
// legacy value overwrites any canonical one; the legacy key is always
// removed, so calling Normalize twice is the same as calling it once.
func Normalize(raw map[string]json.RawMessage) {
	legacy, ok := raw[fieldLegacyState]
	if !ok {
		return
	}
	if !bytes.Equal(bytes.TrimSpace(legacy), []byte("null")) {
		raw[fieldState] = legacy
	}
	delete(raw, fieldLegacyState)
}

// DecodeFragment parses one trimmed log fragment into a Snapshot.
//
// Errors are classified: ErrMissingTime for partial records, *SchemaError
// and ErrMissingState for malformed state, ErrNotObject or a json error for
// fragments that do not parse at all.
func DecodeFragment(fragment []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(fragment)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		var probe any
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return Snapshot{}, err
		}
		return Snapshot{}, ErrNotObject
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Snapshot{}, err
	}
	Normalize(raw)

	t, ok := numericTime(raw[fieldTime])
	if !ok {
		return Snapshot{}, ErrMissingTime
	}

	stateRaw, ok := raw[fieldState]
	if !ok || isNull(stateRaw) {
		return Snapshot{}, ErrMissingState
	}
	var st wireState
	if err := json.Unmarshal(stateRaw, &st); err != nil {
		return Snapshot{}, &SchemaError{Field: fieldState, Err: err}
	}

	snap := Snapshot{Time: t, Agents: st.Agents, Target: st.Target}
	if sigRaw, ok := raw[fieldSignals]; ok && !isNull(sigRaw) {
		if err := json.Unmarshal(sigRaw, &snap.Signals); err != nil {
			return Snapshot{}, &SchemaError{Field: fieldSignals, Err: err}
		}
	}
	return snap, nil
}

func numericTime(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	t, ok := v.(float64)
	return t, ok
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// MarshalJSON writes the canonical record layout.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	agents := s.Agents
	if agents == nil {
		agents = []Position{}
	}
	return json.Marshal(wireRecord{
		Time:    s.Time,
		State:   wireState{Agents: agents, Target: s.Target},
		Signals: s.Signals,
	})
}
