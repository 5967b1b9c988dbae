// Package config loads kvpeek configuration from a YAML file overridden
// by environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/kvpeek/kvpeek/internal/logging"
)

// envPrefix namespaces the environment variables kvpeek reads.
const envPrefix = "KVPEEK_"

// Config is the full application configuration.
//
// Precedence, highest first: environment variables (KVPEEK_LOG_LEVEL,
// KVPEEK_SEARCH_DEBOUNCE_MS, ...), the YAML file, defaults.
type Config struct {
	// Root is the monorepo directory scanned for worker projects.
	// Defaults to the current working directory.
	Root string `koanf:"root"`

	Log       logging.Config  `koanf:"log"`
	Search    SearchConfig    `koanf:"search"`
	Discovery DiscoveryConfig `koanf:"discovery"`
}

// SearchConfig tunes live search behavior.
type SearchConfig struct {
	DebounceMs int `koanf:"debounce_ms"`
	Limit      int `koanf:"limit"`
}

// Debounce returns the live-search debounce window.
func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// DiscoveryConfig tunes project discovery.
type DiscoveryConfig struct {
	// Excludes are doublestar globs, relative to Root, of wrangler
	// config files to ignore.
	Excludes []string `koanf:"excludes"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "kvpeek", "config.yaml"), nil
}

// Load reads configuration from the YAML file at configPath (skipped when
// the file does not exist), applies environment overrides, then defaults,
// then validates.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		var err error
		configPath, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if content, err := os.ReadFile(configPath); err == nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// KVPEEK_LOG_LEVEL -> log.level, KVPEEK_SEARCH_DEBOUNCE_MS ->
	// search.debounce_ms: split on the first underscore after the prefix.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.Root = wd
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Search.DebounceMs == 0 {
		cfg.Search.DebounceMs = 500
	}
	if cfg.Search.Limit == 0 {
		cfg.Search.Limit = 100
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must be set")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got %q", c.Log.Format)
	}
	if c.Search.DebounceMs < 0 {
		return fmt.Errorf("search debounce must be >= 0, got %d", c.Search.DebounceMs)
	}
	if c.Search.Limit < 1 || c.Search.Limit > 1000 {
		return fmt.Errorf("search limit must be between 1 and 1000, got %d", c.Search.Limit)
	}
	return nil
}
