// ABOUTME: Project configuration for agentcrew stored in .agentcrew/config.toml
// ABOUTME: Supplies the database path and retention window to the store's callers

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DirName is the per-project directory agentcrew keeps its state in
const DirName = ".agentcrew"

// FileName is the config file inside the agentcrew directory
const FileName = "config.toml"

// DefaultRetainDays is the retention window applied when the config does not
// set one.
const DefaultRetainDays = 30

// Config is the per-project agentcrew configuration
type Config struct {
	ProjectName   string   `toml:"project_name"`
	ProjectRoot   string   `toml:"project_root"`
	DefaultAgents []string `toml:"default_agents"`
	MaxAgents     int      `toml:"max_agents"`
	DefaultPrompt string   `toml:"default_prompt,omitempty"`
	RetainDays    int      `toml:"retain_days"`
	Version       string   `toml:"version"`
}

// New returns a configuration for the given project with defaults applied
func New(projectName, projectRoot string) *Config {
	return &Config{
		ProjectName:   projectName,
		ProjectRoot:   projectRoot,
		DefaultAgents: []string{"claude"},
		MaxAgents:     5,
		RetainDays:    DefaultRetainDays,
		Version:       "0.1.0",
	}
}

// Dir returns the agentcrew state directory under a project root
func Dir(projectRoot string) string {
	return filepath.Join(projectRoot, DirName)
}

// FilePath returns the config file path under a project root
func FilePath(projectRoot string) string {
	return filepath.Join(Dir(projectRoot), FileName)
}

// DatabasePath returns the SQLite database path under a project root
func DatabasePath(projectRoot string) string {
	return filepath.Join(Dir(projectRoot), "agentcrew.db")
}

// LogsDir returns the logs directory under a project root
func LogsDir(projectRoot string) string {
	return filepath.Join(Dir(projectRoot), "logs")
}

// SessionsDir returns the sessions directory under a project root
func SessionsDir(projectRoot string) string {
	return filepath.Join(Dir(projectRoot), "sessions")
}

// IsInitialized reports whether agentcrew has been initialized under the
// given project root.
func IsInitialized(projectRoot string) bool {
	_, err := os.Stat(FilePath(projectRoot))
	return err == nil
}

// Load reads and validates the configuration under a project root.
// It fails if agentcrew has not been initialized there.
func Load(projectRoot string) (*Config, error) {
	path := FilePath(projectRoot)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("agentcrew not initialized: %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the configuration under its project root, creating the
// agentcrew directory if needed.
func (c *Config) Save() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dir := Dir(c.ProjectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	f, err := os.Create(FilePath(c.ProjectRoot))
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.MaxAgents == 0 {
		c.MaxAgents = 5
	}
	if c.RetainDays == 0 {
		c.RetainDays = DefaultRetainDays
	}
	if len(c.DefaultAgents) == 0 {
		c.DefaultAgents = []string{"claude"}
	}
}

func (c *Config) validate() error {
	if c.ProjectName == "" {
		return fmt.Errorf("project_name is required")
	}
	if c.ProjectRoot == "" {
		return fmt.Errorf("project_root is required")
	}
	if c.MaxAgents < 1 {
		return fmt.Errorf("max_agents must be positive, got %d", c.MaxAgents)
	}
	if c.RetainDays < 0 {
		return fmt.Errorf("retain_days must be non-negative, got %d", c.RetainDays)
	}
	return nil
}
