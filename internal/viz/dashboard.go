package viz

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fence/internal/trajectory"
)

const (
	canvasWidth    = 60
	canvasHeight   = 22
	panelWidth     = 52
	chartPoints    = 120
	ingestTimeout  = 10 * time.Second
	defaultPolling = 500 * time.Millisecond
)

type ingestOp int

const (
	opReload ingestOp = iota
	opPush
	opFollow
)

func (op ingestOp) String() string {
	switch op {
	case opReload:
		return "reload"
	case opPush:
		return "push"
	default:
		return "follow"
	}
}

// RevisionMsg tells the dashboard that the store committed new data.
type RevisionMsg struct {
	Revision uint64
}

type ingestedMsg struct {
	op    ingestOp
	batch trajectory.Batch
	err   error
}

type followTickMsg time.Time

// logWatch remembers the size and modification time of the log as of the
// last ingestion, so follow polls can skip a file that has not changed.
type logWatch struct {
	mu   sync.Mutex
	seen bool
	size int64
	mod  time.Time
}

func (w *logWatch) stat(path string) (os.FileInfo, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	return fi, w.seen && fi.Size() == w.size && fi.ModTime().Equal(w.mod)
}

func (w *logWatch) record(fi os.FileInfo) {
	if fi == nil {
		return
	}
	w.seen, w.size, w.mod = true, fi.Size(), fi.ModTime()
}

// Options configures a dashboard.
type Options struct {
	// Path of the trajectory log. Empty keeps whatever the store holds.
	Path         string
	PollInterval time.Duration
	Theme        string
	Follow       bool
	// Copy writes text to the clipboard. Defaults to clipboard.WriteAll.
	Copy   func(string) error
	Logger logr.Logger
}

// Model is the bubbletea model of the trajectory dashboard.
type Model struct {
	store     *trajectory.Store
	opts      Options
	log       logr.Logger
	scene     *Scene
	theme     Theme
	styles    styles
	index     int
	pinned    bool
	following bool
	revision  uint64
	status    string
	failed    bool
	help      help.Model
	watch     *logWatch
}

func NewModel(store *trajectory.Store, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPolling
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	theme := GetTheme(opts.Theme)
	return Model{
		store:     store,
		opts:      opts,
		log:       log,
		scene:     NewScene(canvasWidth, canvasHeight),
		theme:     theme,
		styles:    newStyles(theme),
		following: opts.Follow,
		pinned:    opts.Follow,
		revision:  store.Revision(),
		help:      help.New(),
		watch:     &logWatch{},
	}
}

func (m Model) Init() tea.Cmd {
	if m.opts.Path == "" {
		return nil
	}
	cmds := []tea.Cmd{m.ingest(opReload)}
	if m.following {
		cmds = append(cmds, m.tick())
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(t time.Time) tea.Msg { return followTickMsg(t) })
}

// ingest runs one store ingestion off the event loop. A follow poll of a
// log whose size and modification time are unchanged produces no message.
func (m Model) ingest(op ingestOp) tea.Cmd {
	if m.opts.Path == "" {
		return nil
	}
	store, path, watch := m.store, m.opts.Path, m.watch
	return func() tea.Msg {
		watch.mu.Lock()
		defer watch.mu.Unlock()
		fi, unchanged := watch.stat(path)
		if op == opFollow && unchanged {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		var (
			batch trajectory.Batch
			err   error
		)
		if op == opReload {
			batch, err = store.ReloadAll(ctx, path)
		} else {
			batch, err = store.IngestTail(ctx, path, true)
		}
		if err == nil {
			watch.record(fi)
		}
		return ingestedMsg{op: op, batch: batch, err: err}
	}
}

// Update handles input events and ingestion results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case RevisionMsg:
		m.sync(msg.Revision)
	case ingestedMsg:
		m.sync(m.store.Revision())
		m.report(msg)
	case followTickMsg:
		if !m.following {
			return m, nil
		}
		return m, tea.Batch(m.ingest(opFollow), m.tick())
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cam := m.scene.Camera
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Prev):
		m.step(-1)
	case key.Matches(msg, keys.Next):
		m.step(1)
	case key.Matches(msg, keys.PrevTen):
		m.step(-10)
	case key.Matches(msg, keys.NextTen):
		m.step(10)
	case key.Matches(msg, keys.First):
		m.index, m.pinned = 0, false
	case key.Matches(msg, keys.Last):
		m.index, m.pinned = m.last(), true
	case key.Matches(msg, keys.Reload):
		m.setStatus("reloading...", false)
		return m, m.ingest(opReload)
	case key.Matches(msg, keys.Push):
		m.setStatus("pushing tail...", false)
		return m, m.ingest(opPush)
	case key.Matches(msg, keys.Follow):
		m.following = !m.following
		if m.following {
			m.pinned = true
			m.index = m.last()
			return m, tea.Batch(m.ingest(opFollow), m.tick())
		}
	case key.Matches(msg, keys.Copy):
		m.copyFrame()
	case key.Matches(msg, keys.Theme):
		m.theme = NextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
	case key.Matches(msg, keys.RotX):
		cam.RotateX(0.1)
	case key.Matches(msg, keys.RotXRev):
		cam.RotateX(-0.1)
	case key.Matches(msg, keys.RotY):
		cam.RotateY(0.1)
	case key.Matches(msg, keys.RotYRev):
		cam.RotateY(-0.1)
	case key.Matches(msg, keys.RotZ):
		cam.RotateZ(0.1)
	case key.Matches(msg, keys.RotZRev):
		cam.RotateZ(-0.1)
	case key.Matches(msg, keys.ZoomIn):
		cam.ZoomIn()
	case key.Matches(msg, keys.ZoomOut):
		cam.ZoomOut()
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) last() int {
	return max(0, m.store.Len()-1)
}

func (m *Model) step(delta int) {
	m.index = min(max(0, m.index+delta), m.last())
	m.pinned = m.index == m.last()
}

// sync keeps the frame index valid after the series changed. A pinned
// index follows the newest frame.
func (m *Model) sync(revision uint64) {
	m.revision = revision
	if m.pinned {
		m.index = m.last()
		return
	}
	m.index = min(m.index, m.last())
}

func (m *Model) report(msg ingestedMsg) {
	if msg.err != nil {
		m.log.Error(msg.err, "ingestion failed", "op", msg.op.String(), "path", m.opts.Path)
		m.setStatus(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		return
	}
	if msg.op == opFollow && msg.batch.Empty() {
		return
	}
	m.setStatus(fmt.Sprintf("%s: %d records, %d skipped, %d filtered",
		msg.op, len(msg.batch.Snapshots), len(msg.batch.Skipped), msg.batch.Filtered), false)
}

func (m *Model) setStatus(s string, failed bool) {
	m.status, m.failed = s, failed
}

func (m *Model) copyFrame() {
	snap, ok := m.store.At(m.index)
	if !ok {
		m.setStatus("nothing to copy", true)
		return
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err == nil {
		err = m.opts.Copy(string(data))
	}
	if err != nil {
		m.log.Error(err, "copy failed", "frame", m.index)
		m.setStatus("copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("copied frame %d", m.index+1), false)
}

func (m *Model) resize(w, h int) {
	cw := max(20, w-panelWidth-6)
	ch := max(8, h-4)
	cam := m.scene.Camera
	m.scene = NewScene(cw, ch)
	m.scene.Camera = cam
	m.help.Width = w
}

// View renders the canvas next to the info panel.
func (m Model) View() string {
	series := m.store.Snapshots()
	idx := min(m.index, len(series)-1)
	threeD := len(series) > 0 && m.store.IsUniformly3D()
	if threeD {
		m.scene.Draw3D(series, idx)
	} else {
		m.scene.Draw2D(series, idx, FitBounds(series))
	}
	canvasView := m.styles.canvas.Render(m.scene.Canvas.String())

	st := m.styles
	var s strings.Builder
	title := "FENCE"
	if m.opts.Path != "" {
		title += "  " + m.opts.Path
	}
	s.WriteString(st.header.Render(title) + "\n")
	mode := st.warn.Render("PAUSED")
	switch {
	case m.following:
		mode = st.ok.Render("FOLLOW")
	case m.pinned:
		mode = st.ok.Render("LIVE")
	}
	s.WriteString(mode + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Revision", fmt.Sprintf("%d", m.revision))
	view := "2D"
	if threeD {
		view = "3D"
	}
	row("View", view)
	if idx < 0 {
		row("Frame", "0/0")
	} else {
		snap := series[idx]
		row("Frame", fmt.Sprintf("%d/%d", idx+1, len(series)))
		row("Time", fmt.Sprintf("%.3f", snap.Time))
		row("Agents", fmt.Sprintf("%d", len(snap.Agents)))
		if off, ok := snap.Offset(snap.Dim()); ok {
			row("Offset", formatPosition(off))
		}
		if chart := offsetChart(series[:idx+1]); chart != "" {
			s.WriteString(st.graph.Render(chart) + "\n")
		}
	}
	if m.status != "" {
		style := st.ok
		if m.failed {
			style = st.err
		}
		s.WriteString("\n" + style.Render(m.status) + "\n")
	}
	panel := st.panel.Render(s.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
	return body + "\n" + st.help.Render(m.help.View(keys))
}

// offsetChart plots |centroid - target| over the last chartPoints frames.
func offsetChart(series []trajectory.Snapshot) string {
	if len(series) > chartPoints {
		series = series[len(series)-chartPoints:]
	}
	off := trajectory.ComputeOffset(series)
	axes := off.Axes()
	norms := make([]float64, 0, len(series))
	for t := range series {
		var sum float64
		for _, axis := range axes {
			sum += axis[t] * axis[t]
		}
		if v := math.Sqrt(sum); !math.IsNaN(v) {
			norms = append(norms, v)
		}
	}
	if len(norms) < 2 {
		return ""
	}
	return asciigraph.Plot(norms,
		asciigraph.Height(5),
		asciigraph.Width(panelWidth-14),
		asciigraph.Caption("centroid offset"))
}

func formatPosition(p trajectory.Position) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
