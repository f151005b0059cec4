// Package config provides configuration management for ctxsync.
// Configuration lives in the project's managed context directory and merges
// YAML file settings over defaults, with CTXSYNC_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ContextDir is the managed context directory relative to the project root.
const ContextDir = ".ai-context"

// configFileName is the name of the config file inside ContextDir.
const configFileName = "config.yaml"

// Config represents the complete ctxsync configuration.
type Config struct {
	// Project holds project identity settings used by the generators.
	Project ProjectConfig `yaml:"project"`

	// Analyzer configures the codebase analysis pass.
	Analyzer AnalyzerConfig `yaml:"analyzer"`

	// Sync configures change detection and background synchronization.
	Sync SyncConfig `yaml:"sync"`

	// Output configures display preferences.
	Output OutputConfig `yaml:"output"`

	// Logging configures optional rotating file output for the watch service.
	Logging LoggingConfig `yaml:"logging"`
}

// ProjectConfig holds project identity settings.
type ProjectConfig struct {
	// Name overrides the project name derived from the root directory.
	Name string `yaml:"name,omitempty"`
	// Description is included in generated context files when set.
	Description string `yaml:"description,omitempty"`
}

// AnalyzerConfig holds analysis settings.
type AnalyzerConfig struct {
	// Exclude lists directory names skipped during analysis.
	Exclude []string `yaml:"exclude,omitempty"`
	// MaxFiles caps the number of files visited per analysis pass.
	MaxFiles int `yaml:"max_files"`
}

// SyncConfig holds change-detection and background sync settings.
type SyncConfig struct {
	// DefaultStrategy is the conflict-resolution strategy used when none is
	// given explicitly (source_wins, regenerate_all, newest, manual).
	DefaultStrategy string `yaml:"default_strategy"`
	// PollInterval is how often watched targets are re-hashed.
	PollInterval time.Duration `yaml:"poll_interval"`
	// DebounceWindow is the quiet period after the last change event for a
	// tool before a sync is triggered.
	DebounceWindow time.Duration `yaml:"debounce_window"`
	// SkipBackup disables the pre-propagation snapshot of existing targets.
	SkipBackup bool `yaml:"skip_backup"`
	// BackupKeep is how many snapshots to retain. Zero keeps the default 10.
	BackupKeep int `yaml:"backup_keep"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Format is the default output format (text, json).
	Format string `yaml:"format"`
	// Color controls color output (auto, always, never).
	Color string `yaml:"color"`
	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose"`
}

// LoggingConfig holds rotating log file settings for the watch service.
type LoggingConfig struct {
	// File is the log file path. Empty logs to stderr.
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log size in megabytes before rotation.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to retain.
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays is the maximum age of rotated files in days.
	MaxAgeDays int `yaml:"max_age_days"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			Exclude:  []string{".git", "node_modules", "vendor", "dist", "build", ContextDir},
			MaxFiles: 20000,
		},
		Sync: SyncConfig{
			DefaultStrategy: "source_wins",
			PollInterval:    time.Second,
			DebounceWindow:  2 * time.Second,
			BackupKeep:      10,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// FilePath returns the config file location for a project root.
func FilePath(root string) string {
	return filepath.Join(root, ContextDir, configFileName)
}

// Load loads the configuration for a project root, merging file settings
// over defaults. A missing config file yields the defaults.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(FilePath(root)) // #nosec G304 - fixed path under the project root
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the project's config file.
func (c *Config) Save(root string) error {
	path := FilePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Variables follow the pattern CTXSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("CTXSYNC_PROJECT_NAME"); v != "" {
		c.Project.Name = v
	}

	if v := os.Getenv("CTXSYNC_SYNC_STRATEGY"); v != "" {
		c.Sync.DefaultStrategy = v
	}
	if v := os.Getenv("CTXSYNC_SYNC_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Sync.PollInterval = d
		}
	}
	if v := os.Getenv("CTXSYNC_SYNC_DEBOUNCE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Sync.DebounceWindow = d
		}
	}
	if v := os.Getenv("CTXSYNC_SYNC_SKIP_BACKUP"); v != "" {
		c.Sync.SkipBackup = parseBool(v)
	}

	if v := os.Getenv("CTXSYNC_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("CTXSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("CTXSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv("CTXSYNC_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
