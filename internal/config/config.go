package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPython       = "python3"
	DefaultTailLines    = 200
	DefaultPollInterval = time.Second
	DefaultTheme        = "ocean"
)

// Config holds the panel settings. The file is usually JSON, which the YAML
// decoder reads as well.
type Config struct {
	PythonPath   string        `yaml:"python_path" json:"python_path"`
	MasPath      string        `yaml:"mas_path" json:"mas_path"`
	SourcePath   string        `yaml:"source_path" json:"source_path"`
	TailLines    int           `yaml:"tail_lines" json:"tail_lines"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`
	Theme        string        `yaml:"theme" json:"theme"`
	// MaxLineBytes caps a single log line; zero keeps the reader's default.
	MaxLineBytes int `yaml:"max_line_bytes,omitempty" json:"max_line_bytes,omitempty"`
}

// Keys lists the settings Set accepts.
var Keys = []string{"python_path", "mas_path", "source_path", "tail_lines", "poll_interval", "theme", "max_line_bytes"}

// ErrUnknownKey is returned by Set for a key outside Keys.
var ErrUnknownKey = errors.New("unknown config key")

func DefaultConfig() *Config {
	return &Config{
		PythonPath:   DefaultPython,
		TailLines:    DefaultTailLines,
		PollInterval: DefaultPollInterval,
		Theme:        DefaultTheme,
	}
}

// DefaultPath is ~/.config/fence/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fence", "config.json"), nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// LoadOrCreate loads path, first creating it with an empty object when it
// does not exist yet.
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			return nil, err
		}
	}
	return Load(path)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Set assigns one setting from its string form.
func (c *Config) Set(key, value string) error {
	switch key {
	case "python_path":
		c.PythonPath = value
	case "mas_path":
		c.MasPath = value
	case "source_path":
		c.SourcePath = value
	case "theme":
		c.Theme = value
	case "tail_lines", "max_line_bytes":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: want a non-negative integer, got %q", key, value)
		}
		if key == "tail_lines" {
			c.TailLines = n
		} else {
			c.MaxLineBytes = n
		}
	case "poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.PollInterval = d
	default:
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	c.fillDefaults()
	return nil
}

// Command returns the interpreter and script prefix used to run the simulator.
func (c *Config) Command() (string, []string) {
	if c.MasPath == "" {
		return c.PythonPath, nil
	}
	return c.PythonPath, []string{c.MasPath}
}

func (c *Config) fillDefaults() {
	if c.PythonPath == "" {
		c.PythonPath = DefaultPython
	}
	if c.TailLines <= 0 {
		c.TailLines = DefaultTailLines
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
}
