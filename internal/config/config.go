// Package config provides configuration management for graphedit.
//
// Config files are YAML or TOML, chosen by extension. Locations (priority
// order):
//  1. $GRAPHEDIT_CONFIG
//  2. ./graphedit.yaml or ./graphedit.toml
//  3. ~/.config/graphedit/config.yaml
//  4. /etc/graphedit/config.yaml
//
// Missing values fall back to defaults; command-line flags override both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"graphedit/internal/catalog"
	"graphedit/internal/draft"
	"graphedit/internal/store"
)

// Defaults for a new installation
const (
	DefaultAddr            = ":8080"
	DefaultDatabasePath    = "./graphedit.db"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultWatchDebounce   = 500 * time.Millisecond
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, path, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, path, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Editor.HistoryLimit == 0 {
		c.Editor.HistoryLimit = store.DefaultHistoryLimit
	}
	if c.Editor.SnapDistance == 0 {
		c.Editor.SnapDistance = draft.DefaultSnapDistance
	}
	if c.Editor.DefaultAgent == "" {
		c.Editor.DefaultAgent = catalog.DefaultAgent
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(DefaultWatchDebounce)
	}
}

// Validate checks every setting
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Server: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("History: %d, Snap: %g, Default agent: %s", c.Editor.HistoryLimit, c.Editor.SnapDistance, c.Editor.DefaultAgent)
	if c.Watch.Path != "" {
		summary += fmt.Sprintf("\nWatching: %s", c.Watch.Path)
	}
	return summary
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
