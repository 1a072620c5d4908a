// Package config loads and validates logtriage configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FamilyConfig describes one log family: a directory of rotated stage
// logs and how many recent files to keep per stage group.
type FamilyConfig struct {
	// Name identifies the family (e.g. "e2e").
	Name string `yaml:"name"`

	// Dir is the directory holding the family's rotated log files.
	Dir string `yaml:"dir"`

	// TakeLast is the per-group retention count used during selection.
	TakeLast int `yaml:"take_last"`
}

// TrackerConfig configures the issue-tracker REST client.
type TrackerConfig struct {
	// Enabled toggles ticket filing.
	Enabled bool `yaml:"enabled"`

	// BaseURL is the tracker API root, e.g. "https://tracker.example.com/api".
	BaseURL string `yaml:"base_url"`

	// Token is the bearer token used for authentication.
	Token string `yaml:"token"`

	// Project is the project key new tickets are filed under.
	Project string `yaml:"project"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"-"`
}

// HistoryConfig configures the filed-ticket history database.
type HistoryConfig struct {
	// Enabled toggles duplicate suppression via the history store.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database path (":memory:" for tests).
	DBPath string `yaml:"db_path"`
}

// Config represents logtriage configuration options.
type Config struct {
	// Families lists the configured log families. At least one is required.
	Families []FamilyConfig `yaml:"families"`

	// ErrorLogDir is the directory of supplementary rotated error logs,
	// selected by modification time rather than filename.
	ErrorLogDir string `yaml:"error_log_dir"`

	// ErrorLogCount is how many rotated error logs to include.
	ErrorLogCount int `yaml:"error_log_count"`

	// ErrorMarker is the literal token that flags the start of an error
	// block inside a failures section.
	ErrorMarker string `yaml:"error_marker"`

	// DiagnosticLog is the side-channel file unexpected failures are
	// appended to.
	DiagnosticLog string `yaml:"diagnostic_log"`

	// LogLevel sets console logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	Tracker TrackerConfig `yaml:"tracker"`
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values. Families
// have no default; they must come from the file.
func DefaultConfig() *Config {
	return &Config{
		ErrorLogCount: 3,
		ErrorMarker:   "✗",
		DiagnosticLog: ".logtriage/diagnostics.log",
		LogLevel:      "info",
		Tracker: TrackerConfig{
			Timeout: 30 * time.Second,
		},
		History: HistoryConfig{
			DBPath: ".logtriage/history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path and
// validates it. A missing or unreadable file is an error: the selector
// cannot run without configured log directories.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	// Temporary struct so the tracker timeout can be given as a duration
	// string in YAML.
	type yamlTracker struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
		Project string `yaml:"project"`
		Timeout string `yaml:"timeout"`
	}
	type yamlConfig struct {
		Families      []FamilyConfig `yaml:"families"`
		ErrorLogDir   string         `yaml:"error_log_dir"`
		ErrorLogCount int            `yaml:"error_log_count"`
		ErrorMarker   string         `yaml:"error_marker"`
		DiagnosticLog string         `yaml:"diagnostic_log"`
		LogLevel      string         `yaml:"log_level"`
		Tracker       yamlTracker    `yaml:"tracker"`
		History       HistoryConfig  `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Families = yamlCfg.Families
	if yamlCfg.ErrorLogDir != "" {
		cfg.ErrorLogDir = yamlCfg.ErrorLogDir
	}
	if yamlCfg.ErrorLogCount != 0 {
		cfg.ErrorLogCount = yamlCfg.ErrorLogCount
	}
	if yamlCfg.ErrorMarker != "" {
		cfg.ErrorMarker = yamlCfg.ErrorMarker
	}
	if yamlCfg.DiagnosticLog != "" {
		cfg.DiagnosticLog = yamlCfg.DiagnosticLog
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	cfg.Tracker.Enabled = yamlCfg.Tracker.Enabled
	cfg.Tracker.BaseURL = yamlCfg.Tracker.BaseURL
	cfg.Tracker.Token = yamlCfg.Tracker.Token
	cfg.Tracker.Project = yamlCfg.Tracker.Project
	if yamlCfg.Tracker.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Tracker.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid tracker timeout %q: %w", yamlCfg.Tracker.Timeout, err)
		}
		cfg.Tracker.Timeout = timeout
	}
	if yamlCfg.History.Enabled {
		cfg.History.Enabled = true
	}
	if yamlCfg.History.DBPath != "" {
		cfg.History.DBPath = yamlCfg.History.DBPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration; a required directory or setting
// that is absent fails here, before any operation runs.
func (c *Config) Validate() error {
	if len(c.Families) == 0 {
		return fmt.Errorf("at least one log family must be configured")
	}

	seen := make(map[string]bool)
	for _, family := range c.Families {
		if family.Name == "" {
			return fmt.Errorf("log family is missing a name")
		}
		if seen[family.Name] {
			return fmt.Errorf("duplicate log family %q", family.Name)
		}
		seen[family.Name] = true
		if family.Dir == "" {
			return fmt.Errorf("log family %q is missing a directory", family.Name)
		}
		if info, err := os.Stat(family.Dir); err != nil || !info.IsDir() {
			return fmt.Errorf("log family %q directory %q is not accessible", family.Name, family.Dir)
		}
		if family.TakeLast < 0 {
			return fmt.Errorf("log family %q take_last must be >= 0, got %d", family.Name, family.TakeLast)
		}
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.ErrorLogCount < 0 {
		return fmt.Errorf("error_log_count must be >= 0, got %d", c.ErrorLogCount)
	}
	if c.Tracker.Enabled {
		if c.Tracker.BaseURL == "" {
			return fmt.Errorf("tracker.base_url cannot be empty when tracker is enabled")
		}
		if c.Tracker.Project == "" {
			return fmt.Errorf("tracker.project cannot be empty when tracker is enabled")
		}
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}
	return nil
}

// Family returns the named family config. When name is empty and exactly
// one family is configured, that family is returned.
func (c *Config) Family(name string) (*FamilyConfig, error) {
	if name == "" && len(c.Families) == 1 {
		return &c.Families[0], nil
	}
	for i := range c.Families {
		if c.Families[i].Name == name {
			return &c.Families[i], nil
		}
	}
	return nil, fmt.Errorf("unknown log family %q", name)
}
