package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/fence/internal/trajectory"
)

const (
	metadataFile = "metadata.json"
	logFile      = "trajectory.log"
	csvFile      = "trajectory.csv"
)

// Archive keeps snapshots of ingested series on disk, one directory per run.
type Archive struct {
	baseDir string
}

func NewArchive(baseDir string) *Archive {
	return &Archive{baseDir: baseDir}
}

func (a *Archive) Init() error {
	return os.MkdirAll(a.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Revision  uint64             `json:"revision"`
	Frames    int                `json:"frames"`
	Skipped   int                `json:"skipped"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes meta plus the series as a canonical log and as CSV. ID and
// Frames are filled in; the returned ID names the run directory.
func (a *Archive) Save(meta RunMetadata, series []trajectory.Snapshot) (string, error) {
	base := strings.TrimSuffix(filepath.Base(meta.Source), filepath.Ext(meta.Source))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "run"
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d_%s", base, meta.Timestamp.Unix(), uuid.NewString()[:8])
	meta.Frames = len(series)
	runDir := filepath.Join(a.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, logFile), func(f *os.File) error {
		return WriteLog(f, series)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, csvFile), func(f *os.File) error {
		return WriteCSV(f, series)
	}); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the metadata of every readable run, oldest first.
func (a *Archive) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := a.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (a *Archive) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(a.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LogPath is the canonical log of a run, readable by the trajectory store.
func (a *Archive) LogPath(runID string) string {
	return filepath.Join(a.baseDir, runID, logFile)
}

// LoadSeries parses the archived log of a run.
func (a *Archive) LoadSeries(runID string) (trajectory.Batch, error) {
	data, err := os.ReadFile(a.LogPath(runID))
	if err != nil {
		return trajectory.Batch{}, err
	}
	return trajectory.ParseLog(string(data)), nil
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, fill func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
