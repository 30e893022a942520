package trajectory_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fence/internal/trajectory"
)

// memSource serves logs from memory. ReadRange only supports the tail form
// the store uses: lines counted from the end, newest first.
type memSource struct {
	mu    sync.Mutex
	files map[string]string
	err   error
	reads int
}

func newMemSource() *memSource {
	return &memSource{files: make(map[string]string)}
}

func (m *memSource) set(path, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = text
}

func (m *memSource) ReadWhole(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return "", m.err
	}
	text, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return text, nil
}

func (m *memSource) ReadRange(ctx context.Context, path string, from, to int, reverse bool) (string, error) {
	text, err := m.ReadWhole(ctx, path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if from > len(lines) {
		return "", nil
	}
	if to > len(lines) {
		to = len(lines)
	}
	out := make([]string, 0, to-from+1)
	for i := len(lines) - from; i >= len(lines)-to; i-- {
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n"), nil
}

// gateSource blocks every read until the test releases it, announcing the
// path on entered first. peak is the most reads ever in flight at once.
type gateSource struct {
	*memSource
	entered chan string
	release chan struct{}
	active  atomic.Int32
	peak    atomic.Int32
}

func (g *gateSource) hold(path string) {
	n := g.active.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	g.entered <- path
	<-g.release
	g.active.Add(-1)
}

func (g *gateSource) ReadWhole(ctx context.Context, path string) (string, error) {
	g.hold(path)
	return g.memSource.ReadWhole(ctx, path)
}

func (g *gateSource) ReadRange(ctx context.Context, path string, from, to int, reverse bool) (string, error) {
	g.hold(path)
	return g.memSource.ReadRange(ctx, path, from, to, reverse)
}

func record(t float64) string {
	return fmt.Sprintf(`{"time": %v, "state": {"agents": [[%v, 0], [%v, 2]], "target": [0, 0]}}`, t, t, t)
}

func logOf(times ...float64) string {
	recs := make([]string, len(times))
	for i, t := range times {
		recs[i] = record(t)
	}
	return strings.Join(recs, ",\n") + ",\n"
}

var _ = Describe("Store", func() {
	var (
		src   *memSource
		store *trajectory.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		src = newMemSource()
		store = trajectory.New(src)
		ctx = context.Background()
	})

	It("starts with the placeholder trajectory", func() {
		Expect(store.Len()).To(Equal(7))
		Expect(store.TimeSeries()).To(Equal([]float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6}))
		Expect(store.IsUniformly2D()).To(BeTrue())
		Expect(store.IsUniformly3D()).To(BeFalse())
		Expect(store.Revision()).To(BeZero())
	})

	Describe("ReloadAll", func() {
		It("drops a malformed fragment and keeps the rest in order", func() {
			src.set("run.json1", record(0)+",\n"+`{"time": 0.1, "sta`+",\n"+record(0.2)+",\n"+record(0.3))

			batch, err := store.ReloadAll(ctx, "run.json1")
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Skipped).To(HaveLen(1))
			Expect(store.TimeSeries()).To(Equal([]float64{0, 0.2, 0.3}))
		})

		It("filters records without a numeric time", func() {
			src.set("run.json1", record(0)+",\n"+`{"state": {"agents": [], "target": [0, 0]}}`+",\n"+record(0.1))

			batch, err := store.ReloadAll(ctx, "run.json1")
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Filtered).To(Equal(1))
			Expect(store.Len()).To(Equal(2))
		})

		It("accepts the legacy states field", func() {
			src.set("old.json1", `{"time": 1.5, "states": {"agents": [[1, 1, 1]], "target": [0, 0, 0]}}`)

			_, err := store.ReloadAll(ctx, "old.json1")
			Expect(err).NotTo(HaveOccurred())
			snap, ok := store.At(0)
			Expect(ok).To(BeTrue())
			Expect(snap.Agents).To(Equal([]trajectory.Position{{1, 1, 1}}))
			Expect(store.IsUniformly3D()).To(BeTrue())
		})

		It("leaves the series alone when the source fails", func() {
			src.err = errors.New("disk on fire")
			before := store.TimeSeries()

			_, err := store.ReloadAll(ctx, "run.json1")
			var readErr *trajectory.ReadError
			Expect(errors.As(err, &readErr)).To(BeTrue())
			Expect(readErr.Path).To(Equal("run.json1"))
			Expect(errors.Is(err, src.err)).To(BeTrue())
			Expect(store.TimeSeries()).To(Equal(before))
			Expect(store.Revision()).To(BeZero())
		})

		It("logs a warning per malformed fragment", func() {
			var lines []string
			logger := funcr.New(func(prefix, args string) { lines = append(lines, args) }, funcr.Options{})
			store = trajectory.New(src, trajectory.WithLogger(logger))
			src.set("run.json1", "nope,\n"+record(0)+",\n{bad")

			_, err := store.ReloadAll(ctx, "run.json1")
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(HaveLen(2))
			Expect(lines[0]).To(ContainSubstring("dropping malformed record"))
		})
	})

	Describe("IngestTail", func() {
		BeforeEach(func() {
			store = trajectory.New(src, trajectory.WithSeries(nil), trajectory.WithTailWindow(3))
			src.set("run.json1", logOf(0.0, 0.1, 0.2, 0.3))
			_, err := store.ReloadAll(ctx, "run.json1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("trims snapshots newer than the first tail record before appending", func() {
			src.set("run.json1", logOf(0.2, 0.25, 0.3))

			_, err := store.IngestTail(ctx, "run.json1", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.TimeSeries()).To(Equal([]float64{0.0, 0.1, 0.2, 0.2, 0.25, 0.3}))
		})

		It("reads only the tail window and restores file order", func() {
			src.set("run.json1", logOf(0.0, 0.1, 0.2, 0.3, 0.4, 0.5))

			_, err := store.IngestTail(ctx, "run.json1", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.TimeSeries()).To(Equal([]float64{0.0, 0.1, 0.2, 0.3, 0.3, 0.4, 0.5}))
		})

		It("replaces the series with the tail when not merging", func() {
			src.set("run.json1", logOf(0.0, 0.1, 0.2, 0.3, 0.4, 0.5))

			_, err := store.IngestTail(ctx, "run.json1", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.TimeSeries()).To(Equal([]float64{0.3, 0.4, 0.5}))
		})

		It("keeps its series apart from the returned batch", func() {
			src.set("run.json1", logOf(0.0, 0.1, 0.2, 0.3, 0.4, 0.5))

			batch, err := store.IngestTail(ctx, "run.json1", false)
			Expect(err).NotTo(HaveOccurred())
			batch.Snapshots[0].Time = 99
			batch.Snapshots = append(batch.Snapshots[:0], trajectory.Snapshot{Time: -1})
			Expect(store.TimeSeries()).To(Equal([]float64{0.3, 0.4, 0.5}))

			batch, err = store.ReloadAll(ctx, "run.json1")
			Expect(err).NotTo(HaveOccurred())
			batch.Snapshots[0].Time = 99
			Expect(store.TimeSeries()).To(Equal([]float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5}))
		})

		It("treats an empty tail batch as a no-op", func() {
			calls := 0
			store.Subscribe(func() { calls++ })
			before := store.Snapshots()
			rev := store.Revision()
			src.set("run.json1", `{"state": {}},`+"\n"+"garbage")

			batch, err := store.IngestTail(ctx, "run.json1", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Empty()).To(BeTrue())
			Expect(store.Snapshots()).To(Equal(before))
			Expect(store.Revision()).To(Equal(rev))
			Expect(calls).To(BeZero())
		})
	})

	Describe("notifications", func() {
		BeforeEach(func() {
			src.set("run.json1", logOf(0, 0.1))
		})

		It("calls every observer once per ingestion", func() {
			var a, b int
			store.Subscribe(func() { a++ })
			store.Subscribe(func() { b++ })

			_, err := store.ReloadAll(ctx, "run.json1")
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(1))
			Expect(b).To(Equal(1))
		})

		It("lets observers read the updated series", func() {
			var seen []float64
			var rev uint64
			store.Subscribe(func() {
				seen = store.TimeSeries()
				rev = store.Revision()
			})

			_, err := store.ReloadAll(ctx, "run.json1")
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]float64{0, 0.1}))
			Expect(rev).To(Equal(uint64(1)))
		})

		It("stops after unsubscribe", func() {
			calls := 0
			cancel := store.Subscribe(func() { calls++ })
			_, _ = store.ReloadAll(ctx, "run.json1")
			cancel()
			cancel()
			_, _ = store.ReloadAll(ctx, "run.json1")
			Expect(calls).To(Equal(1))
		})

		It("bumps the revision on every successful ingestion", func() {
			var revs []uint64
			for i := 0; i < 3; i++ {
				_, err := store.ReloadAll(ctx, "run.json1")
				Expect(err).NotTo(HaveOccurred())
				revs = append(revs, store.Revision())
			}
			_, err := store.IngestTail(ctx, "run.json1", true)
			Expect(err).NotTo(HaveOccurred())
			revs = append(revs, store.Revision())
			Expect(revs).To(Equal([]uint64{1, 2, 3, 4}))
		})
	})

	Describe("concurrent ingestion", func() {
		It("runs one ingestion at a time in call order", func() {
			gate := &gateSource{memSource: src, entered: make(chan string), release: make(chan struct{})}
			src.set("a.json1", logOf(0, 0.1))
			src.set("b.json1", logOf(0.5, 0.6, 0.7))
			store = trajectory.New(gate, trajectory.WithSeries(nil))

			var (
				mu            sync.Mutex
				revs          []uint64
				lens          []int
				first, second int
			)
			store.Subscribe(func() {
				mu.Lock()
				defer mu.Unlock()
				first++
				revs = append(revs, store.Revision())
				lens = append(lens, store.Len())
			})
			store.Subscribe(func() {
				mu.Lock()
				defer mu.Unlock()
				second++
			})

			done := make(chan error, 2)
			go func() {
				_, err := store.ReloadAll(ctx, "a.json1")
				done <- err
			}()
			Eventually(gate.entered).Should(Receive(Equal("a.json1")))

			go func() {
				_, err := store.IngestTail(ctx, "b.json1", false)
				done <- err
			}()
			Consistently(gate.entered, "100ms").ShouldNot(Receive())

			gate.release <- struct{}{}
			Eventually(gate.entered).Should(Receive(Equal("b.json1")))
			gate.release <- struct{}{}

			for range 2 {
				Eventually(done).Should(Receive(BeNil()))
			}
			Expect(gate.peak.Load()).To(Equal(int32(1)))

			mu.Lock()
			defer mu.Unlock()
			Expect(revs).To(Equal([]uint64{1, 2}))
			Expect(lens).To(Equal([]int{2, 3}))
			Expect(first).To(Equal(2))
			Expect(second).To(Equal(2))
			Expect(store.TimeSeries()).To(Equal([]float64{0.5, 0.6, 0.7}))
		})
	})

	Describe("CentroidOffset", func() {
		It("is zero for the first placeholder frame", func() {
			off := store.CentroidOffset()
			Expect(off.X[0]).To(BeNumerically("~", 0, 1e-12))
			Expect(off.Y[0]).To(BeNumerically("~", 0, 1e-12))
			Expect(off.Z).To(BeNil())
			Expect(off.X).To(HaveLen(store.Len()))
		})

		It("keeps axes aligned across empty and ragged frames", func() {
			series := []trajectory.Snapshot{
				{Time: 0, Agents: []trajectory.Position{{1, 1, 3}, {3, 3}}, Target: trajectory.Position{1, 1, 1}},
				{Time: 1, Target: trajectory.Position{0, 0, 0}},
			}
			store = trajectory.New(src, trajectory.WithSeries(series))

			off := store.CentroidOffset()
			Expect(off.Z).To(HaveLen(2))
			Expect(off.X[0]).To(BeNumerically("~", 1, 1e-12))
			Expect(off.Y[0]).To(BeNumerically("~", 1, 1e-12))
			Expect(off.Z[0]).To(BeNumerically("~", 0.5, 1e-12))
			Expect(math.IsNaN(off.X[1])).To(BeTrue())
			Expect(store.IsUniformly2D()).To(BeFalse())
			Expect(store.IsUniformly3D()).To(BeFalse())
		})
	})
})
