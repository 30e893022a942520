package metrics

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"github.com/san-kum/fence/internal/trajectory"
)

// Summary is the outcome of evaluating one log.
type Summary struct {
	Path    string
	Frames  int
	Skipped int
	Values  map[string]float64
	Err     error
}

// Ensemble evaluates several logs concurrently, each with its own store and
// its own metric set.
type Ensemble struct {
	src     trajectory.Source
	metrics func() []Metric
	log     logr.Logger
}

// NewEnsemble builds an ensemble. newMetrics is called once per log since
// metrics carry state while observing.
func NewEnsemble(src trajectory.Source, newMetrics func() []Metric, log logr.Logger) *Ensemble {
	if newMetrics == nil {
		newMetrics = Defaults
	}
	return &Ensemble{src: src, metrics: newMetrics, log: log}
}

// Run returns one Summary per path, in path order. A log that cannot be read
// records its error in the Summary instead of failing the whole run.
func (e *Ensemble) Run(ctx context.Context, paths []string) []Summary {
	results := make([]Summary, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			results[idx] = e.evaluate(ctx, path)
		}(i, path)
	}
	wg.Wait()

	return results
}

func (e *Ensemble) evaluate(ctx context.Context, path string) Summary {
	store := trajectory.New(e.src, trajectory.WithLogger(e.log.WithValues("path", path)))
	batch, err := store.ReloadAll(ctx, path)
	if err != nil {
		return Summary{Path: path, Err: err}
	}
	series := store.Snapshots()
	return Summary{
		Path:    path,
		Frames:  len(series),
		Skipped: len(batch.Skipped),
		Values:  Evaluate(series, e.metrics()),
	}
}
