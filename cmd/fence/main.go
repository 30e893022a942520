package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fence/internal/analysis"
	"github.com/san-kum/fence/internal/config"
	"github.com/san-kum/fence/internal/export"
	"github.com/san-kum/fence/internal/logfile"
	"github.com/san-kum/fence/internal/metrics"
	"github.com/san-kum/fence/internal/runner"
	"github.com/san-kum/fence/internal/trajectory"
	"github.com/san-kum/fence/internal/viz"
	"github.com/spf13/cobra"
)

var errNoLog = errors.New("no trajectory log given and source_path is not configured")

var (
	configFile string
	verbosity  int
	logFile    string
	tailLines  int
	pollEvery  time.Duration
	themeName  string
	follow     bool
	outFile    string
	dataDir    string
	settleAt   float64
	frameIdx   int
	svgMode    string
	svgScale   float64
	phase      bool
	watchLog   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "fence [log]",
		Short:        "control panel for multi-agent trajectory logs",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runDashboard,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/fence/config.json)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log verbosity, repeat for more")
	rootCmd.PersistentFlags().IntVar(&tailLines, "lines", config.DefaultTailLines, "lines read by a tail update")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "archive directory (default next to the config file)")
	rootCmd.Flags().DurationVar(&pollEvery, "poll", config.DefaultPollInterval, "follow poll interval")
	rootCmd.Flags().StringVar(&themeName, "theme", config.DefaultTheme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	rootCmd.Flags().BoolVarP(&follow, "follow", "f", false, "start in follow mode")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the dashboard runs")

	watchCmd := &cobra.Command{
		Use:   "watch [log]",
		Short: "open the dashboard following the log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			follow = true
			return runDashboard(cmd, args)
		},
	}
	watchCmd.Flags().AddFlagSet(rootCmd.Flags())

	infoCmd := &cobra.Command{
		Use:   "info [log]",
		Short: "summarize a trajectory log",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}
	infoCmd.Flags().Float64Var(&settleAt, "settle", metrics.DefaultSettleThreshold, "offset threshold for settling time")

	compareCmd := &cobra.Command{
		Use:   "compare [log...]",
		Short: "evaluate metrics for several logs side by side",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareLogs,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [log]",
		Short: "plot the centroid offset over time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotOffset,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [log]",
		Short: "frequency analysis of the centroid offset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeOffset,
	}
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "also draw offset x against offset y")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [log]",
		Short: "export the series as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	normalizeCmd := &cobra.Command{
		Use:   "normalize [log] [out]",
		Short: "rewrite a log in the canonical record layout",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  normalizeLog,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [log]",
		Short: "render agent paths or a single frame as svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&svgMode, "mode", "paths", "paths or frame")
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index for --mode frame (-1 = last)")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 4, "pixels per braille dot for --mode frame")

	archiveCmd := &cobra.Command{
		Use:   "archive [log]",
		Short: "store a copy of the series with its metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  archiveLog,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list archived runs",
		RunE:  listRuns,
	}
	runsCmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "show an archived run with its offset plot",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "set [key] [value]",
		Short: "change one setting (" + strings.Join(config.Keys, ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE:  setConfig,
	})

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "list simulation profiles",
		RunE:  listProfiles,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate [profile]",
		Short: "run a simulation profile by name or path",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	simulateCmd.Flags().StringVar(&watchLog, "watch", "", "follow this log in the dashboard while the simulation runs")

	rootCmd.AddCommand(watchCmd, infoCmd, compareCmd, plotCmd, analyzeCmd, exportCSVCmd, normalizeCmd,
		exportSVGCmd, archiveCmd, runsCmd, configCmd, profilesCmd, simulateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newLogger(w io.Writer) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	flags := cmd.Flags()
	if flags.Changed("lines") {
		cfg.TailLines = tailLines
	}
	if flags.Changed("poll") {
		cfg.PollInterval = pollEvery
	}
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if dataDir == "" {
		dataDir = filepath.Join(filepath.Dir(path), "runs")
	}
	return cfg, nil
}

func logPath(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.SourcePath == "" {
		return "", errNoLog
	}
	return cfg.SourcePath, nil
}

func newReader(cfg *config.Config) *logfile.Reader {
	return logfile.New().WithMaxLine(cfg.MaxLineBytes)
}

func newStore(cfg *config.Config, log logr.Logger) *trajectory.Store {
	return trajectory.New(newReader(cfg),
		trajectory.WithLogger(log),
		trajectory.WithTailWindow(cfg.TailLines))
}

type loaded struct {
	path  string
	store *trajectory.Store
	batch trajectory.Batch
}

// loadSeries reloads the log named by args into a fresh store.
func loadSeries(cmd *cobra.Command, args []string) (*loaded, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	path, err := logPath(cfg, args)
	if err != nil {
		return nil, err
	}
	store := newStore(cfg, newLogger(os.Stderr))
	batch, err := store.ReloadAll(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	return &loaded{path: path, store: store, batch: batch}, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := logPath(cfg, args)
	if err != nil && !errors.Is(err, errNoLog) {
		return err
	}
	return dashboard(cmd.Context(), cfg, path, follow)
}

// dashboard runs the bubbletea program until the user quits. An empty
// path shows the placeholder series.
func dashboard(ctx context.Context, cfg *config.Config, path string, follow bool) error {
	log := logr.Discard()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		log = newLogger(f)
	}

	store := newStore(cfg, log)
	m := viz.NewModel(store, viz.Options{
		Path:         path,
		PollInterval: cfg.PollInterval,
		Theme:        cfg.Theme,
		Follow:       follow,
		Logger:       log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	cancel := store.Subscribe(func() {
		p.Send(viz.RevisionMsg{Revision: store.Revision()})
	})
	defer cancel()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	l, err := loadSeries(cmd, args)
	if err != nil {
		return err
	}
	store, batch := l.store, l.batch
	series := store.Snapshots()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frames\t%d\n", len(series))
	fmt.Fprintf(w, "skipped\t%d\n", len(batch.Skipped))
	fmt.Fprintf(w, "filtered\t%d\n", batch.Filtered)
	if len(series) > 0 {
		fmt.Fprintf(w, "time\t%.3f .. %.3f\n", series[0].Time, series[len(series)-1].Time)
		fmt.Fprintf(w, "agents\t%d\n", len(series[len(series)-1].Agents))
	}
	dim := "mixed"
	switch {
	case store.IsUniformly3D():
		dim = "3D"
	case store.IsUniformly2D():
		dim = "2D"
	}
	fmt.Fprintf(w, "dimension\t%s\n", dim)

	ms := []metrics.Metric{
		metrics.NewFinalOffset(),
		metrics.NewMinOffset(),
		metrics.NewSpread(),
		metrics.NewSettlingTime(settleAt),
	}
	results := metrics.Evaluate(series, ms)
	for _, m := range ms {
		fmt.Fprintf(w, "%s\t%s\n", m.Name(), formatMetric(results[m.Name()]))
	}
	for _, skip := range batch.Skipped {
		fmt.Fprintf(w, "skip #%d\t%v\n", skip.Index, skip.Err)
	}
	return w.Flush()
}

func compareLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	e := metrics.NewEnsemble(newReader(cfg), metrics.Defaults, newLogger(os.Stderr))
	summaries := e.Run(cmd.Context(), args)

	names := make([]string, 0)
	for _, m := range metrics.Defaults() {
		names = append(names, m.Name())
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "LOG\tFRAMES\tSKIPPED\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
	failed := 0
	for _, sum := range summaries {
		if sum.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\terror: %v\n", sum.Path, sum.Err)
			continue
		}
		cells := make([]string, len(names))
		for i, n := range names {
			cells[i] = formatMetric(sum.Values[n])
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", sum.Path, sum.Frames, sum.Skipped, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed == len(summaries) {
		return errors.New("no log could be read")
	}
	return nil
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func plotOffset(cmd *cobra.Command, args []string) error {
	l, err := loadSeries(cmd, args)
	if err != nil {
		return err
	}
	store := l.store
	if store.Len() < 2 {
		return fmt.Errorf("need at least two frames to plot, have %d", store.Len())
	}

	off := store.CentroidOffset()
	names := []string{"x", "y", "z"}
	for i, axis := range off.Axes() {
		data := dropNaN(axis)
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("centroid offset "+names[i]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func dropNaN(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// offsetNorms is |centroid - target| per frame, NaN for frames without agents.
func offsetNorms(series []trajectory.Snapshot) []float64 {
	out := make([]float64, len(series))
	for i, snap := range series {
		off, ok := snap.Offset(snap.Dim())
		if !ok {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		for _, v := range off {
			sum += v * v
		}
		out[i] = math.Sqrt(sum)
	}
	return out
}

func analyzeOffset(cmd *cobra.Command, args []string) error {
	l, err := loadSeries(cmd, args)
	if err != nil {
		return err
	}
	store := l.store
	times := store.TimeSeries()
	off := store.CentroidOffset()

	names := []string{"x", "y", "z"}
	for i, axis := range off.Axes() {
		peak, err := analysis.DominantFrequency(times, axis)
		if err != nil {
			fmt.Printf("offset %s: %v\n", names[i], err)
			continue
		}
		ps := analysis.PowerSpectrum(axis)
		if len(ps) > 1 {
			fmt.Println(asciigraph.Plot(ps,
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum (offset "+names[i]+")"),
			))
			fmt.Println()
		}
		fmt.Printf("offset %s dominant frequency: %.4f\n", names[i], peak.Frequency)
		if peak.Frequency > 0 {
			fmt.Printf("offset %s period: %.4f\n", names[i], 1/peak.Frequency)
		}
		fmt.Println()
	}

	if phase {
		portrait := analysis.GeneratePhasePortrait(off.X, off.Y)
		fmt.Println("offset x vs offset y")
		fmt.Print(portrait.Render(70, 25))
	}
	return nil
}

// output opens path for writing, or returns stdout for an empty path.
func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	l, err := loadSeries(cmd, args)
	if err != nil {
		return err
	}
	store := l.store
	w, err := output(outFile)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(w, store.Snapshots()); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func normalizeLog(cmd *cobra.Command, args []string) error {
	l, err := loadSeries(cmd, args[:1])
	if err != nil {
		return err
	}
	store, batch := l.store, l.batch
	dest := ""
	if len(args) > 1 {
		dest = args[1]
	}
	w, err := output(dest)
	if err != nil {
		return err
	}
	if err := export.WriteLog(w, store.Snapshots()); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if n := len(batch.Skipped) + batch.Filtered; n > 0 {
		fmt.Fprintf(os.Stderr, "dropped %d records\n", n)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	l, err := loadSeries(cmd, args)
	if err != nil {
		return err
	}
	store := l.store
	series := store.Snapshots()
	if len(series) == 0 {
		return errors.New("log holds no frames")
	}

	var svg string
	switch svgMode {
	case "paths":
		svg = export.PathsToSVG(series, 800, 600)
	case "frame":
		idx := frameIdx
		if idx < 0 || idx >= len(series) {
			idx = len(series) - 1
		}
		scene := viz.NewScene(80, 40)
		if store.IsUniformly3D() {
			scene.Draw3D(series, idx)
		} else {
			scene.Draw2D(series, idx, viz.FitBounds(series))
		}
		svg = export.CanvasToSVG(scene.Canvas, svgScale)
	default:
		return fmt.Errorf("unknown svg mode %q (paths, frame)", svgMode)
	}

	w, err := output(outFile)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, svg); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func archiveLog(cmd *cobra.Command, args []string) error {
	l, err := loadSeries(cmd, args)
	if err != nil {
		return err
	}
	store := l.store

	ar := export.NewArchive(dataDir)
	if err := ar.Init(); err != nil {
		return err
	}
	series := store.Snapshots()
	id, err := ar.Save(export.RunMetadata{
		Source:   l.path,
		Revision: store.Revision(),
		Skipped:  len(l.batch.Skipped),
		Metrics:  dropNaNMetrics(metrics.Evaluate(series, metrics.Defaults())),
	}, series)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

// dropNaNMetrics removes undefined metrics, which JSON cannot encode.
func dropNaNMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func listRuns(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	runs, err := export.NewArchive(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tFRAMES\tSKIPPED\tFINAL OFFSET")
	for _, run := range runs {
		final := "-"
		if v, ok := run.Metrics["final_offset"]; ok {
			final = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Skipped,
			final,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	ar := export.NewArchive(dataDir)
	meta, err := ar.Load(args[0])
	if err != nil {
		return err
	}
	batch, err := ar.LoadSeries(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", meta.ID)
	fmt.Fprintf(w, "source\t%s\n", meta.Source)
	fmt.Fprintf(w, "archived\t%s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "revision\t%d\n", meta.Revision)
	fmt.Fprintf(w, "frames\t%d\n", len(batch.Snapshots))
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, formatMetric(meta.Metrics[name]))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	norms := dropNaN(offsetNorms(batch.Snapshots))
	if len(norms) < 2 {
		return nil
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(norms,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption("|centroid - target|")))
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "file\t%s\n", path)
	fmt.Fprintf(w, "python_path\t%s\n", cfg.PythonPath)
	fmt.Fprintf(w, "mas_path\t%s\n", cfg.MasPath)
	fmt.Fprintf(w, "source_path\t%s\n", cfg.SourcePath)
	fmt.Fprintf(w, "tail_lines\t%d\n", cfg.TailLines)
	fmt.Fprintf(w, "poll_interval\t%s\n", cfg.PollInterval)
	fmt.Fprintf(w, "theme\t%s\n", cfg.Theme)
	fmt.Fprintf(w, "max_line_bytes\t%d\n", cfg.MaxLineBytes)
	fmt.Fprintf(w, "archive\t%s\n", dataDir)
	return w.Flush()
}

func setConfig(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	return config.Save(path, cfg)
}

func newManager(cfg *config.Config) *runner.Manager {
	bin, prefix := cfg.Command()
	return runner.NewManager(bin, prefix, newLogger(os.Stderr))
}

func listProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr := newManager(cfg)
	defer mgr.StopAll()

	profiles, err := runner.ListProfiles(cmd.Context(), mgr)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("no profiles found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATH")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Path)
	}
	return w.Flush()
}

// resolveProfile accepts an existing path or a profile name.
func resolveProfile(ctx context.Context, mgr *runner.Manager, arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return arg, nil
	}
	profiles, err := runner.ListProfiles(ctx, mgr)
	if err != nil {
		return "", err
	}
	for _, p := range profiles {
		if p.Name == arg {
			return p.Path, nil
		}
	}
	return "", fmt.Errorf("unknown profile %q", arg)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	mgr := newManager(cfg)
	defer mgr.StopAll()

	path, err := resolveProfile(ctx, mgr, args[0])
	if err != nil {
		return err
	}
	name, err := runner.Simulate(mgr, "", path)
	if err != nil {
		return err
	}

	if watchLog != "" {
		if err := dashboard(ctx, cfg, watchLog, true); err != nil {
			return err
		}
		if !mgr.Exited(name) {
			return mgr.Stop(name)
		}
		return mgr.Wait(ctx, name)
	}
	return stream(ctx, mgr, name)
}

// stream copies the process output to the terminal until it exits.
func stream(ctx context.Context, mgr *runner.Manager, name string) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		exited := !mgr.IsRunning(name)
		if out, err := mgr.Read(name); err == nil {
			fmt.Print(out)
		}
		if out, err := mgr.ReadErr(name); err == nil {
			fmt.Fprint(os.Stderr, out)
		}
		if exited {
			return mgr.Wait(ctx, name)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
