// internal/config/config.go
//
// This package handles configuration and the .kringle directory
// structure. Every project that runs an exchange gets a .kringle/ folder
// created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// KringleDir is the name of the directory we create per project.
	KringleDir = ".kringle"

	defaultRosterFile = "roster.yaml"
)

const defaultProjectConfigYAML = `# kringle project configuration
version: 1

# Default roster file, resolved relative to .kringle/rosters/.
roster: roster.yaml

solver:
  # Random-retry attempts before the exact matcher takes over.
  # 0 keeps the built-in default.
  max_attempts: 0

reveal:
  # Ask for a second keypress before hiding a revealed receiver.
  confirm_hide: true
`

// SolverConfig tunes the draw.
type SolverConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// RevealConfig tunes the private reveal flow.
type RevealConfig struct {
	ConfirmHide bool `yaml:"confirm_hide"`
}

// ProjectConfig models .kringle/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Roster  string       `yaml:"roster"`
	Solver  SolverConfig `yaml:"solver"`
	Reveal  RevealConfig `yaml:"reveal"`
}

// Config holds the runtime configuration for Kringle.
type Config struct {
	// ProjectDir is the directory where the user ran `kringle` from.
	ProjectDir string

	// KringleProjectDir is ProjectDir/.kringle.
	KringleProjectDir string

	Project ProjectConfig
}

// InitKringleDir creates the .kringle directory structure in the given
// project directory. Called on startup by both binaries.
//
// Structure created:
// .kringle/
// ├── logs/        <- draw logbook
// ├── rosters/     <- saved roster files
// └── envelopes/   <- sealed per-giver results from kringle-draw
func InitKringleDir(projectDir string) error {
	kringleDir := filepath.Join(projectDir, KringleDir)

	dirs := []string{
		filepath.Join(kringleDir, "logs"),
		filepath.Join(kringleDir, "rosters"),
		filepath.Join(kringleDir, "envelopes"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(kringleDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project
// settings.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		KringleProjectDir: filepath.Join(projectDir, KringleDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.KringleProjectDir, "logs")
}

// RostersDir returns the directory that holds saved roster files.
func (c *Config) RostersDir() string {
	return filepath.Join(c.KringleProjectDir, "rosters")
}

// EnvelopesDir returns the directory kringle-draw writes sealed results
// into.
func (c *Config) EnvelopesDir() string {
	return filepath.Join(c.KringleProjectDir, "envelopes")
}

// ProjectConfigPath returns the on-disk location for the project config
// file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.KringleProjectDir, "config.yaml")
}

// RosterPath resolves the configured default roster file. Bare file
// names live under .kringle/rosters/; anything with a path separator is
// resolved against the project directory.
func (c *Config) RosterPath() string {
	name := strings.TrimSpace(c.Project.Roster)
	if name == "" {
		name = defaultRosterFile
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	if strings.ContainsRune(name, os.PathSeparator) {
		return filepath.Clean(filepath.Join(c.ProjectDir, name))
	}
	return filepath.Join(c.RostersDir(), name)
}

// SolverMaxAttempts returns the configured retry cap, or zero when the
// solver's built-in default should apply.
func (c *Config) SolverMaxAttempts() int {
	return c.Project.Solver.MaxAttempts
}

// ConfirmHide reports whether the reveal flow waits for a confirmation
// keypress before hiding a receiver again.
func (c *Config) ConfirmHide() bool {
	return c.Project.Reveal.ConfirmHide
}

// SetRoster updates the default roster file and persists the value back
// to .kringle/config.yaml.
func (c *Config) SetRoster(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("config: roster file name is required")
	}
	c.Project.Roster = name
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Roster:  defaultRosterFile,
		Reveal:  RevealConfig{ConfirmHide: true},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Roster) == "" {
		pc.Roster = defaultRosterFile
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Roster = strings.TrimSpace(pc.Roster)
	if pc.Solver.MaxAttempts < 0 {
		pc.Solver.MaxAttempts = 0
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if strings.TrimSpace(pc.Roster) == "" {
		return fmt.Errorf("roster is required")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.KringleProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure kringle dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
