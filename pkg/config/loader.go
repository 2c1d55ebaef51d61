package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// ProjectFileName is the config file looked up in the checked root.
const ProjectFileName = ".foldercheck.toml"

// GlobalConfigDir is the name of the global config directory inside the
// user's config directory.
const GlobalConfigDir = "foldercheck"

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// Root is the checked directory; its project file is read if present.
	Root string

	// File, if set, replaces the project file and must exist.
	File string

	// SkipGlobal ignores the user config (used by tests).
	SkipGlobal bool
}

// Load loads configuration from all layers in order of precedence:
//  1. Built-in defaults
//  2. Global user config
//  3. Project config (opts.File or <opts.Root>/.foldercheck.toml)
//  4. Environment variables
//
// CLI flags are applied separately after Load returns.
func Load(opts LoadOptions) (*Config, error) {
	cfg := NewConfig()

	if !opts.SkipGlobal {
		globalCfg, err := loadConfigFile(GetGlobalConfigPath(), false)
		if err != nil {
			return nil, err
		}
		cfg.Merge(globalCfg)
	}

	switch {
	case opts.File != "":
		projectCfg, err := loadConfigFile(opts.File, true)
		if err != nil {
			return nil, err
		}
		cfg.Merge(projectCfg)
	case opts.Root != "":
		projectCfg, err := loadConfigFile(filepath.Join(opts.Root, ProjectFileName), false)
		if err != nil {
			return nil, err
		}
		cfg.Merge(projectCfg)
	}

	if err := applyEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile decodes a TOML file. A missing file yields (nil, nil)
// unless required is set.
func loadConfigFile(path string, required bool) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in config %s", undecoded[0].String(), path)
	}
	return &cfg, nil
}

// applyEnvironmentVariables applies FOLDERCHECK_* environment variables.
func applyEnvironmentVariables(cfg *Config) error {
	if v := os.Getenv("FOLDERCHECK_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("FOLDERCHECK_WORKERS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("FOLDERCHECK_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("FOLDERCHECK_ALGORITHM"); v != "" {
		cfg.Algorithm = v
	}
	// FOLDERCHECK_EXCLUDE: comma-separated patterns, added to file patterns
	if v := os.Getenv("FOLDERCHECK_EXCLUDE"); v != "" {
		cfg.Merge(&Config{Exclude: splitAndTrim(v)})
	}
	applyBoolEnv("FOLDERCHECK_PROGRESS", &cfg.Progress)
	applyBoolEnv("FOLDERCHECK_COLOR", &cfg.Color)
	// https://no-color.org: any non-empty value disables color
	if os.Getenv("NO_COLOR") != "" {
		f := false
		cfg.Color = &f
	}
	if v := os.Getenv("FOLDERCHECK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("FOLDERCHECK_VERBOSITY"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("FOLDERCHECK_VERBOSITY: %w", err)
		}
		cfg.Log.Verbosity = &n
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// applyBoolEnv applies a boolean environment variable to a pointer.
func applyBoolEnv(envVar string, target **bool) {
	if v := os.Getenv(envVar); v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			t := true
			*target = &t
		case "false", "0", "no":
			f := false
			*target = &f
		}
	}
}

// GetGlobalConfigPath returns the path to the global config file.
func GetGlobalConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, GlobalConfigDir, "config.toml")
}
