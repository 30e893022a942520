package trajectory

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/go-logr/logr"
)

// DefaultTailWindow is how many trailing log lines IngestTail reads.
const DefaultTailWindow = 200

// Source supplies raw log text. ReadRange follows the line-window contract
// of the logfile package: 1-based inclusive lines, counted from the end and
// returned newest-first when reverse is set.
type Source interface {
	ReadWhole(ctx context.Context, path string) (string, error)
	ReadRange(ctx context.Context, path string, from, to int, reverse bool) (string, error)
}

type Option func(*Store)

func WithLogger(log logr.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithTailWindow(lines int) Option {
	return func(s *Store) {
		if lines > 0 {
			s.tailWindow = lines
		}
	}
}

// WithSeries replaces the placeholder the store starts with.
func WithSeries(series []Snapshot) Option {
	return func(s *Store) { s.series = series }
}

// Store owns the Series and its revision counter.
type Store struct {
	src        Source
	log        logr.Logger
	tailWindow int

	ingest sync.Mutex

	mu        sync.RWMutex
	series    []Snapshot
	revision  uint64
	observers map[uint64]func()
	nextObs   uint64
}

func New(src Source, opts ...Option) *Store {
	s := &Store{
		src:        src,
		log:        logr.Discard(),
		tailWindow: DefaultTailWindow,
		series:     Placeholder(),
		observers:  make(map[uint64]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to run after every successful ingestion and
// returns a function that removes it. Calling cancel twice is harmless.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// ReloadAll replaces the Series with the parsed contents of the whole log.
func (s *Store) ReloadAll(ctx context.Context, path string) (Batch, error) {
	s.ingest.Lock()
	defer s.ingest.Unlock()

	text, err := s.src.ReadWhole(ctx, path)
	if err != nil {
		return Batch{}, &ReadError{Path: path, Err: err}
	}
	batch := s.parse(path, text)
	s.commit(batch.Snapshots, false)
	return batch, nil
}

// IngestTail parses only the last lines of the log. Without merge the tail
// replaces the Series; with merge, trailing snapshots newer than the first
// tail record are dropped and the tail is appended. An empty tail batch in
// merge mode leaves the store untouched and notifies nobody.
func (s *Store) IngestTail(ctx context.Context, path string, merge bool) (Batch, error) {
	s.ingest.Lock()
	defer s.ingest.Unlock()

	text, err := s.src.ReadRange(ctx, path, 1, s.tailWindow, true)
	if err != nil {
		return Batch{}, &ReadError{Path: path, Err: err}
	}
	batch := s.parse(path, chronological(text))
	if merge && batch.Empty() {
		s.log.V(1).Info("tail merge found nothing new", "path", path)
		return batch, nil
	}
	s.commit(batch.Snapshots, merge)
	return batch, nil
}

func (s *Store) parse(path, text string) Batch {
	batch := ParseLog(text)
	for _, sk := range batch.Skipped {
		s.log.Info("dropping malformed record", "path", path, "index", sk.Index, "error", sk.Err.Error())
	}
	return batch
}

func (s *Store) commit(batch []Snapshot, merge bool) {
	s.mu.Lock()
	if merge {
		s.series = mergeTail(s.series, batch)
	} else {
		s.series = slices.Clone(batch)
	}
	s.revision++
	rev, n := s.revision, len(s.series)
	observers := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	s.log.V(1).Info("series updated", "revision", rev, "snapshots", n, "merge", merge)
	for _, fn := range observers {
		fn()
	}
}

// mergeTail trims every trailing snapshot whose time is strictly greater
// than the first batch time, then appends the batch.
func mergeTail(series, batch []Snapshot) []Snapshot {
	if len(batch) == 0 {
		return series
	}
	first := batch[0].Time
	end := len(series)
	for end > 0 && series[end-1].Time > first {
		end--
	}
	merged := make([]Snapshot, 0, end+len(batch))
	merged = append(merged, series[:end]...)
	return append(merged, batch...)
}

// chronological restores file order for newest-first range reads.
func chronological(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}

// Snapshots returns the current Series. Callers must not modify it; the
// store replaces rather than mutates the slice on ingestion.
func (s *Store) Snapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series)
}

// At returns the snapshot at index i, clamped into range.
func (s *Store) At(i int) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.series) == 0 {
		return Snapshot{}, false
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s.series) {
		i = len(s.series) - 1
	}
	return s.series[i], true
}

func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// TimeSeries projects the time of every snapshot in Series order.
func (s *Store) TimeSeries() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	times := make([]float64, len(s.series))
	for i, snap := range s.series {
		times[i] = snap.Time
	}
	return times
}

// CentroidOffset computes mean agent position minus target per snapshot.
// Snapshots without agents yield NaN on every axis so the axes stay aligned.
func (s *Store) CentroidOffset() Offset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeOffset(s.series)
}

// ComputeOffset is CentroidOffset for an arbitrary series.
func ComputeOffset(series []Snapshot) Offset {
	dim := 2
	for _, snap := range series {
		if snap.Dim() >= 3 {
			dim = 3
			break
		}
	}
	axes := make([][]float64, dim)
	for i := range axes {
		axes[i] = make([]float64, len(series))
	}
	for t, snap := range series {
		off, ok := snap.Offset(dim)
		for i := range axes {
			if ok {
				axes[i][t] = off[i]
			} else {
				axes[i][t] = math.NaN()
			}
		}
	}
	out := Offset{X: axes[0], Y: axes[1]}
	if dim == 3 {
		out.Z = axes[2]
	}
	return out
}

// IsUniformly2D reports whether every agent position has two components.
func (s *Store) IsUniformly2D() bool {
	return s.uniformDim(2)
}

// IsUniformly3D reports whether every agent position has three components.
func (s *Store) IsUniformly3D() bool {
	return s.uniformDim(3)
}

func (s *Store) uniformDim(dim int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, snap := range s.series {
		for _, a := range snap.Agents {
			if len(a) != dim {
				return false
			}
		}
	}
	return true
}
