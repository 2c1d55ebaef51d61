// Package config provides configuration management for foldercheck.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Global user config (~/.config/foldercheck/config.toml)
//  3. Project config (.foldercheck.toml in the checked root, or --config)
//  4. Environment variables (FOLDERCHECK_*, NO_COLOR)
//  5. CLI flags (highest priority)
package config

import (
	"fmt"
	"slices"
)

// Config is the main configuration struct for foldercheck.
type Config struct {
	// Root is the directory to check.
	Root string `toml:"root,omitempty"`

	// Workers bounds parallel hashing. 0 means one worker per CPU.
	Workers int `toml:"workers"`

	// Algorithm is the content digest ("highwayhash" or "md5").
	Algorithm string `toml:"algorithm"`

	// Exclude lists doublestar patterns, relative to the root, to leave out
	// of snapshots.
	Exclude []string `toml:"exclude"`

	// Progress draws the hashing counter on interactive terminals.
	Progress *bool `toml:"progress"`

	// Color styles headers and errors.
	Color *bool `toml:"color"`

	// Log configures diagnostic logging.
	Log LogConfig `toml:"log,omitempty"`

	// Watch configures the watch command.
	Watch WatchConfig `toml:"watch"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Verbosity is 0 (errors) through 4 (trace).
	Verbosity *int `toml:"verbosity"`

	// Format is "text" or "json".
	Format string `toml:"format,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// DebounceMS is the quiet period before a re-check, in milliseconds.
	DebounceMS int `toml:"debounce_ms"`
}

// Defaults.
const (
	DefaultAlgorithm  = "highwayhash"
	DefaultLogFormat  = "text"
	DefaultVerbosity  = 1
	DefaultDebounceMS = 2000
)

// NewConfig creates a new Config with built-in defaults.
func NewConfig() *Config {
	trueVal := true
	verbosity := DefaultVerbosity
	return &Config{
		Algorithm: DefaultAlgorithm,
		Exclude:   []string{},
		Progress:  &trueVal,
		Color:     &trueVal,
		Log: LogConfig{
			Verbosity: &verbosity,
			Format:    DefaultLogFormat,
		},
		Watch: WatchConfig{
			DebounceMS: DefaultDebounceMS,
		},
	}
}

// Merge merges another config into this one (other takes precedence).
// Exclude patterns accumulate across layers.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Root != "" {
		c.Root = other.Root
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.Algorithm != "" {
		c.Algorithm = other.Algorithm
	}
	for _, p := range other.Exclude {
		if !slices.Contains(c.Exclude, p) {
			c.Exclude = append(c.Exclude, p)
		}
	}
	if other.Progress != nil {
		c.Progress = other.Progress
	}
	if other.Color != nil {
		c.Color = other.Color
	}

	if other.Log.Verbosity != nil {
		c.Log.Verbosity = other.Log.Verbosity
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	if other.Watch.DebounceMS != 0 {
		c.Watch.DebounceMS = other.Watch.DebounceMS
	}
}

// ProgressEnabled reports whether the progress counter should be drawn.
func (c *Config) ProgressEnabled() bool {
	return c.Progress == nil || *c.Progress
}

// ColorEnabled reports whether output may be styled.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

// VerbosityLevel returns the configured verbosity.
func (c *Config) VerbosityLevel() int {
	if c.Log.Verbosity == nil {
		return DefaultVerbosity
	}
	return *c.Log.Verbosity
}

// Validate rejects values no command can use. The digest algorithm is
// checked by the command that uses it.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", f)
	}
	if v := c.VerbosityLevel(); v < 0 || v > 4 {
		return fmt.Errorf("log.verbosity must be between 0 and 4, got %d", v)
	}
	return nil
}
