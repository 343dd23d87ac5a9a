package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"bcup-go/internal/bcup"
	"bcup-go/internal/fs"
)

// DefaultNameFormat produces names like 2024-01-15_10-30-00, whose
// lexicographic order matches chronological order.
const DefaultNameFormat = "Y-m-d_H-M-S"

// Config represents the main configuration for bcup.
type Config struct {
	// NameFormat is the default snapshot name format; sources may override.
	NameFormat string `toml:"name_format"`

	LogDir  string         `toml:"log_dir"`
	History HistoryConfig  `toml:"history"`
	Sources []SourceConfig `toml:"sources"`
}

// HistoryConfig selects the run-history store backend.
type HistoryConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// SourceConfig describes one backup job.
type SourceConfig struct {
	Source   string `toml:"source"`
	Target   string `toml:"target"`
	Period   string `toml:"period"` // Go duration string, e.g. "1h30m"
	Method   string `toml:"method"` // "full", "last" or "diff"
	Compress bool   `toml:"compress"`
	Limit    int    `toml:"limit,omitempty"` // retained snapshots; diff only

	// NameFormat overrides the top-level default for this source.
	NameFormat string `toml:"name_format,omitempty"`

	// Fingerprint selects change detection: "mtime" (default) or "sha256".
	Fingerprint string `toml:"fingerprint,omitempty"`

	// TargetFS names the target filesystem for path rules:
	// "posix" (default), "ntfs" or "fat32".
	TargetFS string `toml:"target_fs,omitempty"`
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		NameFormat: DefaultNameFormat,
		LogDir:     filepath.Join(baseDir, "log"),
		History: HistoryConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "history"),
		},
	}
}

// Job builds the validated job descriptor for one source entry.
func (c *Config) Job(sc SourceConfig) (bcup.Job, error) {
	period, err := time.ParseDuration(sc.Period)
	if err != nil {
		return bcup.Job{}, fmt.Errorf("%w: bad period %q: %v", bcup.ErrInvalidConfig, sc.Period, err)
	}

	method, err := bcup.ParseMethod(sc.Method)
	if err != nil {
		return bcup.Job{}, err
	}

	fingerprint, err := bcup.ParseFingerprint(sc.Fingerprint)
	if err != nil {
		return bcup.Job{}, err
	}

	rules, err := fs.RulesFor(sc.TargetFS)
	if err != nil {
		return bcup.Job{}, err
	}

	format := sc.NameFormat
	if format == "" {
		format = c.NameFormat
	}
	if format == "" {
		format = DefaultNameFormat
	}

	id := bcup.JobName(sc.Source)
	job := bcup.Job{
		ID:          id,
		Source:      sc.Source,
		Target:      filepath.Join(sc.Target, id),
		Period:      period,
		Method:      method,
		Compress:    sc.Compress,
		Limit:       sc.Limit,
		NameFormat:  format,
		Fingerprint: fingerprint,
		Rules:       rules,
	}
	if err := job.Validate(); err != nil {
		return bcup.Job{}, err
	}
	return job, nil
}

// Jobs validates every source entry. A malformed descriptor is fatal for
// that job only: it lands in errs and the remaining jobs still load.
func (c *Config) Jobs() (jobs []bcup.Job, errs []error) {
	seen := make(map[string]bool, len(c.Sources))
	for _, sc := range c.Sources {
		job, err := c.Job(sc)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %q: %w", sc.Source, err))
			continue
		}
		if seen[job.ID] {
			errs = append(errs, fmt.Errorf("source %q: %w: duplicate job %s", sc.Source, bcup.ErrInvalidConfig, job.ID))
			continue
		}
		seen[job.ID] = true
		jobs = append(jobs, job)
	}
	return jobs, errs
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
